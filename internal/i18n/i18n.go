// Package i18n resolves user-facing strings from embedded YAML catalogs.
// English is the fallback for missing languages and messages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

// Message IDs.
const (
	MsgAckCopied     = "ack.copied"
	MsgAckSaved      = "ack.saved"
	MsgAckCleared    = "ack.cleared"
	MsgBackendEmpty  = "backend.empty"
	MsgBackendError  = "backend.error"
	MsgClearConfirm  = "clear.confirm"
	MsgClearAborted  = "clear.aborted"
	MsgSaveAlert     = "alert.save"
	MsgClearAlert    = "alert.clear"
	MsgCopyAlert     = "alert.copy"
	MsgExportAlert   = "alert.export"
	MsgExportWritten = "export.written"
	MsgServeListen   = "serve.listening"
)

// Init loads every embedded catalog and selects lang.
func Init(lang string) error {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return fmt.Errorf("reading locales: %w", err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, f.Name()); err != nil {
			return fmt.Errorf("parsing %s: %w", f.Name(), err)
		}
	}

	mu.Lock()
	bundle = b
	localizer = i18n.NewLocalizer(b, lang)
	mu.Unlock()
	return nil
}

// T translates messageID. Template data fills {{.Field}} placeholders.
// Unknown IDs come back unchanged.
func T(messageID string, data ...map[string]any) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	if l == nil {
		if err := Init("en"); err != nil {
			return messageID
		}
		mu.RLock()
		l = localizer
		mu.RUnlock()
	}

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	msg, err := l.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}

// Languages lists the languages with an embedded catalog, taken from the
// active.<lang>.yaml file names.
func Languages() []string {
	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil
	}

	var out []string
	for _, f := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(f.Name(), "active."), ".yaml")
		if f.IsDir() || name == f.Name() {
			continue
		}
		out = append(out, name)
	}
	return out
}
