// Package apperr defines the failure kinds surfaced to users by the portal
// and the calculator: transport failures, non-success HTTP statuses and
// client-side validation.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindHTTP
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a tagged failure. Status is set for KindHTTP, Reason for
// KindValidation.
type Error struct {
	Kind   Kind
	Status int
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("http %d: %s", e.Status, http.StatusText(e.Status))
	case KindValidation:
		return "validation: " + e.Reason
	case KindTransport:
		if e.Err != nil {
			return "transport: " + e.Err.Error()
		}
		return "transport failure"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and, when set on target, the
// same status and reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Status != 0 && t.Status != e.Status {
		return false
	}
	if t.Reason != "" && t.Reason != e.Reason {
		return false
	}
	return true
}

// Transport wraps a network-level failure.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

// HTTP reports a non-success status from the backend.
func HTTP(status int) *Error {
	return &Error{Kind: KindHTTP, Status: status}
}

// Validation reports a client-side precondition violation.
func Validation(reason string) *Error {
	return &Error{Kind: KindValidation, Reason: reason}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindHTTP {
		return e.Status
	}
	return 0
}
