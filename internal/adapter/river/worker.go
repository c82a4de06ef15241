package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// EventWorker records backend events from the River queue in the audit log.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	logEvent(ctx, job.Args,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// logEvent writes one audit line. Saved values are logged by length only.
func logEvent(ctx context.Context, args EventJobArgs, extra ...any) {
	attrs := []any{
		"event", args.Event,
		"op_id", args.OpID,
	}
	if args.Value != "" {
		attrs = append(attrs, "value_len", len(args.Value))
	}
	if !args.Timestamp.IsZero() {
		attrs = append(attrs, "saved_at", args.Timestamp)
	}
	attrs = append(attrs, extra...)
	slog.InfoContext(ctx, "backend event", attrs...)
}
