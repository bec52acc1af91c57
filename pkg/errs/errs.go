package errs

import (
	"errors"
	"fmt"
)

// Kind classifies failures involving external collaborators so handlers and
// tests can tell a configuration problem from an upstream one.
type Kind string

const (
	KindConfig          Kind = "config_error"
	KindUpstream        Kind = "upstream_error"
	KindInvalidResponse Kind = "invalid_response"
	KindNetwork         Kind = "network_error"
)

type Error struct {
	Kind    Kind
	Status  int // upstream HTTP status, when applicable
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Config reports a missing or invalid server configuration. Not retryable.
func Config(message string) *Error {
	return &Error{Kind: KindConfig, Message: message}
}

// Upstream reports a non-2xx response from a collaborator.
func Upstream(status int, message string) *Error {
	return &Error{Kind: KindUpstream, Status: status, Message: fmt.Sprintf("%s (status %d)", message, status)}
}

// InvalidResponse reports a 2xx response whose body is not the shape the
// collaborator's contract promises.
func InvalidResponse(message string) *Error {
	return &Error{Kind: KindInvalidResponse, Message: message}
}

// Network reports a transport-level failure before any response arrived.
func Network(message string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: message + " - check that the backend service is reachable", Err: err}
}

// KindOf returns the taxonomy kind carried by err, or "" for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
