package i18n_test

import (
	"slices"
	"testing"

	"github.com/neomorfeo/keyledger/internal/i18n"
)

func TestT_English(t *testing.T) {
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	tests := map[string]string{
		i18n.MsgAckCopied:    "✅ Copied!",
		i18n.MsgAckSaved:     "✅ Saved!",
		i18n.MsgBackendEmpty: "Backend file is empty...",
		i18n.MsgBackendError: "Error loading backend...",
		i18n.MsgClearConfirm: "Clear all keys from backend? This cannot be undone.",
	}
	for id, want := range tests {
		if got := i18n.T(id); got != want {
			t.Errorf("T(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestT_TemplateData(t *testing.T) {
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	got := i18n.T(i18n.MsgSaveAlert, map[string]any{"Error": "failed to save"})
	if got != "Error saving to backend: failed to save" {
		t.Errorf("T = %q", got)
	}

	got = i18n.T(i18n.MsgClearAlert, map[string]any{"Error": "failed to save"})
	if got != "Error clearing backend: failed to save" {
		t.Errorf("T = %q", got)
	}
}

func TestT_German(t *testing.T) {
	if err := i18n.Init("de"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { _ = i18n.Init("en") })

	if got := i18n.T(i18n.MsgAckSaved); got != "✅ Gespeichert!" {
		t.Errorf("T = %q, want %q", got, "✅ Gespeichert!")
	}
}

func TestT_UnsupportedLanguageFallsBackToEnglish(t *testing.T) {
	if err := i18n.Init("fr"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { _ = i18n.Init("en") })

	if got := i18n.T(i18n.MsgAckCopied); got != "✅ Copied!" {
		t.Errorf("T = %q, want English fallback", got)
	}
}

func TestT_UnknownID(t *testing.T) {
	if got := i18n.T("no.such.message"); got != "no.such.message" {
		t.Errorf("T = %q, want the ID back", got)
	}
}

func TestLanguages(t *testing.T) {
	langs := i18n.Languages()
	for _, want := range []string{"en", "de"} {
		if !slices.Contains(langs, want) {
			t.Errorf("Languages() = %v, missing %q", langs, want)
		}
	}
}
