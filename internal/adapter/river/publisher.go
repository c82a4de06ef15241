package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/keyledger/internal/domain"
)

// Compile-time checks.
var (
	_ domain.EventPublisher = (*Publisher)(nil)
	_ domain.EventPublisher = (*LogPublisher)(nil)
)

// EventJobArgs carries a backend event through the job queue. River
// serializes it as JSON; the worker never reads the backend itself.
type EventJobArgs struct {
	Event     string    `json:"event"`
	OpID      string    `json:"op_id"`
	Value     string    `json:"value,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "backend.event" }

func newEventJobArgs(event domain.Event, record domain.Record) EventJobArgs {
	return EventJobArgs{
		Event:     string(event),
		OpID:      record.OpID,
		Value:     record.Value,
		Timestamp: record.Timestamp,
	}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a backend event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, record domain.Record) error {
	if _, err := p.client.Insert(ctx, newEventJobArgs(event, record), nil); err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}

// LogPublisher handles events inline with the worker's logging when no job
// database is configured.
type LogPublisher struct{}

// Publish logs the event.
func (LogPublisher) Publish(ctx context.Context, event domain.Event, record domain.Record) error {
	logEvent(ctx, newEventJobArgs(event, record))
	return nil
}
