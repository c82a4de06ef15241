package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neomorfeo/keyledger/internal/domain"
)

// maxResourceBytes bounds a PUT body.
const maxResourceBytes = 16 << 20

// ResourceStore is the storage behind the served text resource.
// Put checks ifMatch ("*" or a version token) and reports whether the
// resource was created, atomically with the write.
type ResourceStore interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Put(ctx context.Context, content, ifMatch string) (snap domain.Snapshot, created bool, err error)
}

// RegisterResource serves store at path with GET and PUT. Responses carry
// the store's version token as ETag and PUT honors If-Match.
func RegisterResource(r chi.Router, path string, store ResourceStore) {
	h := &resourceHandler{store: store}
	r.Get(path, h.get)
	r.Put(path, h.put)
}

type resourceHandler struct {
	store ResourceStore
}

func (h *resourceHandler) get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "loading resource failed", "error", err)
		http.Error(w, "failed to load resource", http.StatusInternalServerError)
		return
	}

	if snap.Version != "" {
		w.Header().Set("ETag", snap.Version)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, snap.Content)
}

func (h *resourceHandler) put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "text/plain" {
			http.Error(w, "content type must be text/plain", http.StatusUnsupportedMediaType)
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxResourceBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusRequestEntityTooLarge)
		return
	}

	snap, created, err := h.store.Put(ctx, string(body), r.Header.Get("If-Match"))
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
		slog.ErrorContext(ctx, "saving resource failed", "error", err)
		http.Error(w, "failed to save resource", http.StatusInternalServerError)
		return
	}

	if snap.Version != "" {
		w.Header().Set("ETag", snap.Version)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	slog.DebugContext(ctx, "resource saved", "bytes", len(body), "status", status)
	w.WriteHeader(status)
}
