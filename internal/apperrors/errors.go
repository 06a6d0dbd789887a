// Package apperrors defines the error taxonomy shared by every handler and
// platform adapter in axd.
package apperrors

import (
	"fmt"
	"net/http"
)

// Kind classifies a failure the way the dispatch layer needs to render it.
type Kind int

const (
	// Validation covers malformed requests: missing fields, out-of-range
	// values, predicate-less queries.
	Validation Kind = iota
	// Resolution covers target/element/menu lookups that come back empty.
	Resolution
	// Permission covers missing accessibility or screen-recording entitlements.
	Permission
	// Adapter covers a platform call that returned a non-success code.
	Adapter
	// Unexpected covers anything that should have been impossible.
	Unexpected
)

// Error is the typed error every handler deals in. It never crosses the HTTP
// boundary directly — the dispatch layer renders it into the documented
// response envelope.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Validationf builds a Validation-kind error, HTTP 400.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Resolutionf builds a Resolution-kind error, HTTP 400 per spec §7.
func Resolutionf(format string, args ...any) *Error {
	return &Error{Kind: Resolution, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Permissionf builds a Permission-kind error, HTTP 403.
func Permissionf(format string, args ...any) *Error {
	return &Error{Kind: Permission, Status: http.StatusForbidden, Message: fmt.Sprintf(format, args...)}
}

// FromAdapter wraps an OS/platform-adapter error, preserving its text per §7.
func FromAdapter(op string, err error) *Error {
	return &Error{
		Kind:    Adapter,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("%s failed: %v", op, err),
		cause:   err,
	}
}

// Unexpectedf builds an Unexpected-kind error, HTTP 500.
func Unexpectedf(format string, args ...any) *Error {
	return &Error{Kind: Unexpected, Status: http.StatusInternalServerError, Message: fmt.Sprintf(format, args...)}
}

// As attempts to recover an *Error from a plain error value.
func As(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	e, ok := err.(*Error)
	return e, ok
}
