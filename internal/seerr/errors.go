package seerr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means the server URL or API key is missing.
	ErrNotConfigured = errors.New("jellyseerr server URL and API key are required")

	// ErrTransport means the server could not be reached or refused our credentials.
	ErrTransport = errors.New("could not connect to jellyseerr")

	// ErrUnauthorized is a transport failure caused by a rejected API key.
	// It is never retried.
	ErrUnauthorized = errors.New("jellyseerr rejected the API key")

	// ErrUpstream means the server answered but rejected the request.
	ErrUpstream = errors.New("jellyseerr request failed")

	// ErrInvalidID means a catalog id was not a positive integer.
	ErrInvalidID = errors.New("invalid catalog id")
)

// Error wraps a failed client operation with its category and context.
type Error struct {
	Op         string // search, details, requests, submit, connect
	Kind       error  // one of the package sentinels
	StatusCode int    // HTTP status, when the server answered
	Message    string // server supplied message, when any
	Err        error  // underlying cause, when any
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg = e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("jellyseerr %s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("jellyseerr %s: %s", e.Op, msg)
}

// Unwrap exposes both the category sentinel and the cause to errors.Is.
// A rejected API key also counts as a transport failure.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Kind == ErrUnauthorized {
		errs = append(errs, ErrTransport)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(op string, kind error, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsTransport reports whether err is a connectivity or authentication failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsUpstream reports whether the server rejected the request payload.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsValidation reports whether err is an invalid catalog id.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidID)
}

// IsRetryable reports whether an operation failing with err may succeed if
// tried again: the server was unreachable, not that it said no.
func IsRetryable(err error) bool {
	return IsTransport(err) && !errors.Is(err, ErrUnauthorized)
}

// UserMessage returns the message to show for err, preferring the server's own.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch {
		case e.Message != "":
			return e.Message
		case errors.Is(e.Kind, ErrUpstream):
			return "request failed"
		}
		return e.Kind.Error()
	}
	return err.Error()
}
