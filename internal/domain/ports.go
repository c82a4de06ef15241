package domain

import "context"

// Backend is the persistence contract for the single flat text resource.
// Load treats a missing resource as empty content. Save overwrites the whole
// resource; a non-empty ifVersion makes the write conditional and a mismatch
// returns ErrVersionConflict.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, content, ifVersion string) (Snapshot, error)
}

// Appender is implemented by backends that can append a line atomically.
type Appender interface {
	Append(ctx context.Context, line string) error
}

// EventPublisher defines the contract for emitting backend events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, record Record) error
}

// TransitionValidator checks operation lifecycle changes.
type TransitionValidator interface {
	Apply(ctx context.Context, current OpStatus, event OpEvent) (OpStatus, error)
}

// Clipboard places text on the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}
