package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrVersionConflict = errors.New("backend changed since it was read")
	ErrContentUnknown  = errors.New("backend content could not be determined")
	ErrEmptyKey        = errors.New("no key to save")
	ErrNoClipboard     = errors.New("clipboard is not available")
)

// UnknownKindError is returned when a selector does not name a supported kind.
type UnknownKindError struct {
	Value string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown key kind %q (use uuid, api or license)", e.Value)
}

// InvalidKeyError is returned when a value cannot be saved as one log line.
type InvalidKeyError struct {
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return "invalid key: " + e.Reason
}

// StatusError is returned when the transport answers with an unexpected status.
type StatusError struct {
	Method string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Method, e.Status)
}

// WriteError is the failure result of a write, append or clear.
type WriteError struct {
	Op  Op
	Err error
}

func (e *WriteError) Error() string {
	if e.Err == nil {
		return "failed to save"
	}
	return "failed to save: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// TransitionError is returned when an operation lifecycle change is not allowed.
type TransitionError struct {
	Event   OpEvent
	Current OpStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
