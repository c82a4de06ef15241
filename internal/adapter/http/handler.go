package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/keyledger/internal/app"
	"github.com/neomorfeo/keyledger/internal/domain"
	"github.com/neomorfeo/keyledger/internal/i18n"
)

// KeyResponse is the API representation of a generated key.
type KeyResponse struct {
	Value string `json:"value" doc:"Generated key"`
	Kind  string `json:"kind" doc:"Key kind"`
	Label string `json:"label" doc:"Human-readable kind name"`
}

// EntryResponse is the API representation of one log line.
type EntryResponse struct {
	Timestamp string `json:"timestamp" doc:"Save timestamp (ISO 8601, UTC, milliseconds)"`
	Value     string `json:"value" doc:"Saved key"`
	Line      string `json:"line" doc:"Line as written to the backend"`
}

// BackendResponse is the API representation of the backend view.
type BackendResponse struct {
	Content string `json:"content" doc:"Raw backend content"`
	State   string `json:"state" doc:"present, empty or unknown" enum:"present,empty,unknown"`
	Display string `json:"display" doc:"Text to display, with a placeholder when empty or unknown"`
}

// AckResponse is a transient acknowledgment.
type AckResponse struct {
	Message    string `json:"message" doc:"Localized acknowledgment"`
	DurationMS int64  `json:"duration_ms" doc:"How long to show the acknowledgment"`
}

func toKeyResponse(k domain.GeneratedKey) KeyResponse {
	return KeyResponse{Value: k.Value, Kind: string(k.Kind), Label: k.Kind.Label()}
}

func toBackendResponse(v domain.BackendView) BackendResponse {
	return BackendResponse{
		Content: v.Content,
		State:   string(v.State),
		Display: DisplayText(v),
	}
}

func toAckResponse(a domain.Ack) AckResponse {
	return AckResponse{Message: i18n.T(a.MessageID), DurationMS: a.Duration.Milliseconds()}
}

// DisplayText returns the content of v, or the localized placeholder when
// the backend is empty or could not be read.
func DisplayText(v domain.BackendView) string {
	switch v.State {
	case domain.ContentEmpty:
		return i18n.T(i18n.MsgBackendEmpty)
	case domain.ContentUnknown:
		return i18n.T(i18n.MsgBackendError)
	default:
		return v.Content
	}
}

// --- Generate ---

type GenerateInput struct {
	Body struct {
		Kind string `json:"kind,omitempty" default:"uuid" enum:"uuid,api,license" doc:"Key kind"`
	}
}

type GenerateOutput struct {
	Body KeyResponse
}

// --- Save ---

type SaveInput struct {
	Body struct {
		Value string `json:"value" minLength:"1" maxLength:"1024" doc:"Key to append to the backend log"`
	}
}

type SaveOutput struct {
	Body struct {
		Entry   EntryResponse   `json:"entry"`
		Backend BackendResponse `json:"backend"`
		Ack     AckResponse     `json:"ack"`
	}
}

// --- Backend ---

type BackendOutput struct {
	Body BackendResponse
}

type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

type ClearInput struct {
	Confirm bool `query:"confirm" required:"false" doc:"Must be true to clear the backend"`
}

// Register adds the key and backend API routes to the Huma API.
func Register(api huma.API, svc *app.KeyService) {
	huma.Register(api, huma.Operation{
		OperationID: "generate-key",
		Method:      http.MethodPost,
		Path:        "/api/v1/keys",
		Summary:     "Generate a key",
		Tags:        []string{"Keys"},
	}, func(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
		kind, err := domain.ParseKind(input.Body.Kind)
		if err != nil {
			return nil, toHumaError(err)
		}
		key, err := svc.Generate(ctx, kind)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GenerateOutput{Body: toKeyResponse(key)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "save-key",
		Method:      http.MethodPost,
		Path:        "/api/v1/keys/save",
		Summary:     "Append a key to the backend log",
		Tags:        []string{"Keys"},
	}, func(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
		result, err := svc.Save(ctx, input.Body.Value)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &SaveOutput{}
		out.Body.Entry = EntryResponse{
			Timestamp: result.Entry.Timestamp.Format(domain.TimestampLayout),
			Value:     result.Entry.Value,
			Line:      result.Entry.Line(),
		}
		out.Body.Backend = toBackendResponse(result.View)
		out.Body.Ack = toAckResponse(result.Ack)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-backend",
		Method:      http.MethodGet,
		Path:        "/api/v1/backend",
		Summary:     "Read the backend content",
		Tags:        []string{"Backend"},
	}, func(ctx context.Context, _ *struct{}) (*BackendOutput, error) {
		return &BackendOutput{Body: toBackendResponse(svc.Refresh(ctx))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-backend",
		Method:      http.MethodGet,
		Path:        "/api/v1/backend/export",
		Summary:     "Download the backend file",
		Tags:        []string{"Backend"},
	}, func(ctx context.Context, _ *struct{}) (*ExportOutput, error) {
		content, err := svc.Export(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ExportOutput{
			ContentType:        app.ExportMediaType,
			ContentDisposition: fmt.Sprintf("attachment; filename=%q", app.ExportFilename),
			Body:               []byte(content),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "clear-backend",
		Method:      http.MethodDelete,
		Path:        "/api/v1/backend",
		Summary:     "Clear the backend",
		Tags:        []string{"Backend"},
	}, func(ctx context.Context, input *ClearInput) (*BackendOutput, error) {
		if !input.Confirm {
			return nil, huma.Error400BadRequest(i18n.T(i18n.MsgClearConfirm) + " (confirm=true)")
		}
		view, err := svc.Clear(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &BackendOutput{Body: toBackendResponse(view)}, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrEmptyKey) {
		return huma.Error422UnprocessableEntity(err.Error())
	}

	var invalidErr *domain.InvalidKeyError
	if errors.As(err, &invalidErr) {
		return huma.Error422UnprocessableEntity(invalidErr.Error())
	}

	var kindErr *domain.UnknownKindError
	if errors.As(err, &kindErr) {
		return huma.Error422UnprocessableEntity(kindErr.Error())
	}

	if errors.Is(err, domain.ErrVersionConflict) {
		return huma.Error409Conflict(err.Error())
	}

	var writeErr *domain.WriteError
	if errors.As(err, &writeErr) {
		return huma.Error502BadGateway(writeErr.Error())
	}

	if errors.Is(err, domain.ErrContentUnknown) {
		return huma.Error502BadGateway(err.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
