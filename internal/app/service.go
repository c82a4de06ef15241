package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neomorfeo/keyledger/internal/domain"
	"github.com/neomorfeo/keyledger/internal/i18n"
)

// SaveResult is the outcome of a successful save.
type SaveResult struct {
	Entry domain.LogEntry
	View  domain.BackendView
	Ack   domain.Ack
}

// KeyService dispatches the user-facing controls to the generator and the
// store. Each call runs independently; the backend resource is the only state
// shared between concurrent calls.
type KeyService struct {
	gen       *Generator
	store     *Store
	publisher domain.EventPublisher
	validator domain.TransitionValidator
	clipboard domain.Clipboard
}

// NewKeyService creates a service with the given adapters. clipboard may be nil.
func NewKeyService(gen *Generator, store *Store, publisher domain.EventPublisher, validator domain.TransitionValidator, clipboard domain.Clipboard) *KeyService {
	return &KeyService{
		gen:       gen,
		store:     store,
		publisher: publisher,
		validator: validator,
		clipboard: clipboard,
	}
}

// Generate produces a new key of the given kind.
func (s *KeyService) Generate(ctx context.Context, kind domain.Kind) (domain.GeneratedKey, error) {
	var key domain.GeneratedKey
	err := s.dispatch(ctx, domain.OpGenerate, func(_ string) error {
		var err error
		key, err = s.gen.Generate(kind)
		return err
	})
	return key, err
}

// SelectKind is called when the kind selector changes; it regenerates.
func (s *KeyService) SelectKind(ctx context.Context, kind domain.Kind) (domain.GeneratedKey, error) {
	return s.Generate(ctx, kind)
}

// Copy places value on the clipboard.
func (s *KeyService) Copy(ctx context.Context, value string) (domain.Ack, error) {
	err := s.dispatch(ctx, domain.OpCopy, func(_ string) error {
		if s.clipboard == nil {
			return domain.ErrNoClipboard
		}
		if err := s.clipboard.WriteText(value); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Ack{}, err
	}
	return domain.Ack{MessageID: i18n.MsgAckCopied, Duration: domain.AckDuration}, nil
}

// Save appends value to the backend log and returns the refreshed view.
func (s *KeyService) Save(ctx context.Context, value string) (SaveResult, error) {
	value = strings.TrimSpace(value)
	var result SaveResult
	err := s.dispatch(ctx, domain.OpSave, func(opID string) error {
		if err := domain.ValidateKeyValue(value); err != nil {
			return err
		}

		entry, err := s.store.Append(ctx, value)
		if err != nil {
			return err
		}

		s.publish(ctx, domain.EventKeySaved, domain.Record{
			OpID:      opID,
			Value:     entry.Value,
			Timestamp: entry.Timestamp,
		})

		result = SaveResult{
			Entry: entry,
			View:  s.store.View(ctx),
			Ack:   domain.Ack{MessageID: i18n.MsgAckSaved, Duration: domain.AckDuration},
		}
		return nil
	})
	return result, err
}

// Refresh reloads the backend view.
func (s *KeyService) Refresh(ctx context.Context) domain.BackendView {
	var view domain.BackendView
	_ = s.dispatch(ctx, domain.OpRefresh, func(_ string) error {
		view = s.store.View(ctx)
		return nil
	})
	return view
}

// Export returns the backend content for download. It fails with
// domain.ErrContentUnknown when the backend cannot be read.
func (s *KeyService) Export(ctx context.Context) (string, error) {
	var content string
	err := s.dispatch(ctx, domain.OpDownload, func(_ string) error {
		view := s.store.View(ctx)
		if view.State == domain.ContentUnknown {
			return domain.ErrContentUnknown
		}
		content = view.Content
		return nil
	})
	return content, err
}

// Store exposes the underlying store for adapters that stream exports.
func (s *KeyService) Store() *Store {
	return s.store
}

// Clear empties the backend and returns the refreshed view.
func (s *KeyService) Clear(ctx context.Context) (domain.BackendView, error) {
	var view domain.BackendView
	err := s.dispatch(ctx, domain.OpClear, func(opID string) error {
		if err := s.store.Clear(ctx); err != nil {
			return err
		}

		s.publish(ctx, domain.EventBackendCleared, domain.Record{OpID: opID})
		view = s.store.View(ctx)
		return nil
	})
	return view, err
}

// dispatch runs fn as one operation, moving it through its lifecycle.
func (s *KeyService) dispatch(ctx context.Context, op domain.Op, fn func(opID string) error) error {
	opID, err := newOpID()
	if err != nil {
		return fmt.Errorf("generating operation id: %w", err)
	}

	status, err := s.validator.Apply(ctx, domain.OpIdle, domain.OpEventStart)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "operation started", "op", op, "op_id", opID, "status", status)

	runErr := fn(opID)

	event := domain.OpEventResolve
	if runErr != nil {
		event = domain.OpEventReject
	}
	status, err = s.validator.Apply(ctx, status, event)
	if err != nil {
		return err
	}

	if runErr != nil {
		slog.WarnContext(ctx, "operation failed", "op", op, "op_id", opID, "status", status, "error", runErr)
		return runErr
	}
	slog.InfoContext(ctx, "operation finished", "op", op, "op_id", opID, "status", status)
	return nil
}

// publish emits an event. Failures are logged and do not fail the operation.
func (s *KeyService) publish(ctx context.Context, event domain.Event, record domain.Record) {
	if err := s.publisher.Publish(ctx, event, record); err != nil {
		slog.ErrorContext(ctx, "publishing event failed", "event", event, "op_id", record.OpID, "error", err)
	}
}
