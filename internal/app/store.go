package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/neomorfeo/keyledger/internal/domain"
)

const (
	// ExportFilename is the name of the downloaded backend file.
	ExportFilename = "backend.txt"
	// ExportMediaType is the MIME type of the downloaded backend file.
	ExportMediaType = "text/plain"

	defaultMaxAttempts = 3
)

// StoreOptions tunes a Store. Zero values select defaults.
type StoreOptions struct {
	// MaxAttempts bounds compare-and-swap retries of Append on version conflicts.
	MaxAttempts int
	// Now stamps log entries. Defaults to time.Now.
	Now func() time.Time
}

// Store reads and writes the whole backend resource. It keeps no cache:
// every call round-trips to the backend.
type Store struct {
	backend     domain.Backend
	maxAttempts int
	now         func() time.Time
}

// NewStore creates a store on top of the given backend.
func NewStore(backend domain.Backend, opts StoreOptions) *Store {
	s := &Store{
		backend:     backend,
		maxAttempts: opts.MaxAttempts,
		now:         opts.Now,
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Read returns the current backend content. Any failure resolves to "".
// Use View to tell a failed read apart from an empty backend.
func (s *Store) Read(ctx context.Context) string {
	return s.View(ctx).Content
}

// View returns the current backend content together with its state.
func (s *Store) View(ctx context.Context) domain.BackendView {
	snap, err := s.backend.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "reading backend failed", "error", err)
		return domain.UnknownView()
	}
	return domain.NewBackendView(snap.Content)
}

// Write overwrites the backend content entirely.
func (s *Store) Write(ctx context.Context, content string) error {
	return s.overwrite(ctx, domain.OpSave, content)
}

// Clear resets the backend to empty content.
func (s *Store) Clear(ctx context.Context) error {
	return s.overwrite(ctx, domain.OpClear, "")
}

func (s *Store) overwrite(ctx context.Context, op domain.Op, content string) error {
	if _, err := s.backend.Save(ctx, content, ""); err != nil {
		return &domain.WriteError{Op: op, Err: err}
	}
	return nil
}

// Append adds one timestamped line for value to the backend.
//
// Backends implementing domain.Appender append atomically. Otherwise the
// store reads the content and writes it back with the new line. When the
// backend reports a version the write is conditional and retried on
// conflict; without a version two concurrent appends can overwrite each
// other and one entry is lost.
func (s *Store) Append(ctx context.Context, value string) (domain.LogEntry, error) {
	entry := domain.NewLogEntry(s.now(), value)
	line := entry.Line()

	if appender, ok := s.backend.(domain.Appender); ok {
		if err := appender.Append(ctx, line); err != nil {
			return domain.LogEntry{}, &domain.WriteError{Op: domain.OpSave, Err: err}
		}
		return entry, nil
	}

	for attempt := 1; ; attempt++ {
		snap, err := s.backend.Load(ctx)
		if err != nil {
			return domain.LogEntry{}, &domain.WriteError{
				Op:  domain.OpSave,
				Err: fmt.Errorf("%w: %w", domain.ErrContentUnknown, err),
			}
		}

		_, err = s.backend.Save(ctx, snap.Content+line, snap.Version)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= s.maxAttempts {
			return domain.LogEntry{}, &domain.WriteError{Op: domain.OpSave, Err: err}
		}
		slog.DebugContext(ctx, "backend changed during append, retrying",
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
		)
	}
}

// Export writes content as the downloadable backend file.
func (s *Store) Export(w io.Writer, content string) error {
	if _, err := io.WriteString(w, content); err != nil {
		return fmt.Errorf("exporting backend: %w", err)
	}
	return nil
}
