package orchestrator

import (
	"errors"
	"fmt"
)

// Kind partitions failures by what the caller can do about them.
type Kind string

const (
	KindInvalidInput   Kind = "invalid_input"
	KindNetworkFailure Kind = "network_failure"
	KindRemoteFailure  Kind = "remote_failure"
	KindExportFailure  Kind = "export_failure"
)

// Error is the single error type crossing the orchestrator boundary.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the failure kind, or empty for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

var (
	// ErrRequestInFlight rejects a Start while another request is running.
	ErrRequestInFlight = errors.New("a scrape request is already in flight")

	// ErrSuperseded resolves a Wait whose request lost to a newer one.
	ErrSuperseded = errors.New("request superseded by a newer one")
)
