package app_test

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/neomorfeo/keyledger/internal/app"
	"github.com/neomorfeo/keyledger/internal/domain"
)

var (
	uuidPattern    = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	apiKeyPattern  = regexp.MustCompile(`^[A-Za-z0-9]{64}$`)
	licensePattern = regexp.MustCompile(`^[A-Z0-9]{5}(-[A-Z0-9]{5}){4}$`)
)

const iterations = 2000

func TestGenerator_UUIDFormat(t *testing.T) {
	gen := app.NewGenerator()

	for range iterations {
		id := gen.UUID()
		if len(id) != 36 {
			t.Fatalf("len(%q) = %d, want 36", id, len(id))
		}
		if !uuidPattern.MatchString(id) {
			t.Fatalf("UUID %q does not match %s", id, uuidPattern)
		}
	}
}

func TestGenerator_UUIDVariantCoversAllValues(t *testing.T) {
	gen := app.NewGenerator()
	seen := make(map[byte]bool)

	for range iterations {
		seen[gen.UUID()[19]] = true
	}

	for _, c := range []byte("89ab") {
		if !seen[c] {
			t.Errorf("variant nibble %q never produced", c)
		}
	}
	if len(seen) != 4 {
		t.Errorf("got variant nibbles %v, want exactly 8, 9, a, b", seen)
	}
}

func TestGenerator_APIKeyFormat(t *testing.T) {
	gen := app.NewGenerator()

	for range iterations {
		key := gen.APIKey()
		if !apiKeyPattern.MatchString(key) {
			t.Fatalf("API key %q does not match %s", key, apiKeyPattern)
		}
	}
}

func TestGenerator_LicenseKeyFormat(t *testing.T) {
	gen := app.NewGenerator()

	for range iterations {
		key := gen.LicenseKey()
		if len(key) != 29 {
			t.Fatalf("len(%q) = %d, want 29", key, len(key))
		}
		if !licensePattern.MatchString(key) {
			t.Fatalf("license key %q does not match %s", key, licensePattern)
		}
		if n := strings.Count(key, "-"); n != 4 {
			t.Fatalf("license key %q has %d hyphens, want 4", key, n)
		}
		for _, pos := range []int{5, 11, 17, 23} {
			if key[pos] != '-' {
				t.Fatalf("license key %q: position %d = %q, want '-'", key, pos, key[pos])
			}
		}
	}
}

func TestGenerator_SeededIsDeterministic(t *testing.T) {
	seed := [32]byte{1, 2, 3}
	a := app.NewSeededGenerator(seed)
	b := app.NewSeededGenerator(seed)

	for _, kind := range domain.Kinds {
		ka, err := a.Generate(kind)
		if err != nil {
			t.Fatalf("Generate(%q) error: %v", kind, err)
		}
		kb, _ := b.Generate(kind)
		if ka != kb {
			t.Errorf("Generate(%q) = %q and %q, want equal for the same seed", kind, ka.Value, kb.Value)
		}
		if ka.Kind != kind {
			t.Errorf("Kind = %q, want %q", ka.Kind, kind)
		}
	}
}

func TestGenerator_ValuesDiffer(t *testing.T) {
	gen := app.NewGenerator()
	seen := make(map[string]bool)

	for range 100 {
		key := gen.APIKey()
		if seen[key] {
			t.Fatalf("API key %q generated twice", key)
		}
		seen[key] = true
	}
}

func TestGenerator_UnknownKind(t *testing.T) {
	gen := app.NewGenerator()

	key, err := gen.Generate(domain.Kind("guid"))
	var kindErr *domain.UnknownKindError
	if !errors.As(err, &kindErr) {
		t.Fatalf("expected UnknownKindError, got %v", err)
	}
	if key.Value != "" {
		t.Errorf("Value = %q, want empty", key.Value)
	}
}
