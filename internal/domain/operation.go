package domain

import "time"

// Op names a user-facing control.
type Op string

const (
	OpGenerate Op = "generate"
	OpCopy     Op = "copy"
	OpSave     Op = "save"
	OpRefresh  Op = "refresh"
	OpDownload Op = "download"
	OpClear    Op = "clear"
)

// OpStatus is the lifecycle state of one dispatched operation.
type OpStatus string

const (
	OpIdle     OpStatus = "idle"
	OpPending  OpStatus = "pending"
	OpResolved OpStatus = "resolved"
	OpRejected OpStatus = "rejected"
)

// OpEvent moves an operation through its lifecycle.
type OpEvent string

const (
	OpEventStart   OpEvent = "start"
	OpEventResolve OpEvent = "resolve"
	OpEventReject  OpEvent = "reject"
)

// OpTransition defines a valid lifecycle change.
type OpTransition struct {
	Event OpEvent
	Src   OpStatus
	Dst   OpStatus
}

// OpTransitions is consumed by the FSM adapter. Resolved and rejected are terminal.
var OpTransitions = []OpTransition{
	{Event: OpEventStart, Src: OpIdle, Dst: OpPending},
	{Event: OpEventResolve, Src: OpPending, Dst: OpResolved},
	{Event: OpEventReject, Src: OpPending, Dst: OpRejected},
}

// AckDuration is how long a control shows its acknowledgment before reverting.
const AckDuration = 2 * time.Second

// Ack is a transient acknowledgment shown after a successful control.
// MessageID is resolved through the i18n catalog by the presenting adapter.
type Ack struct {
	MessageID string
	Duration  time.Duration
}

// Event is emitted after a mutation of the backend.
type Event string

const (
	EventKeySaved       Event = "key_saved"
	EventBackendCleared Event = "backend_cleared"
)

// Record is the payload of a published event.
type Record struct {
	OpID      string
	Value     string
	Timestamp time.Time
}
