package browserfx

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrNotFound is matched (via errors.Is) by every *NotFoundError.
	ErrNotFound = errors.New(`browserfx: node not found`)

	// ErrUnsupportedMethod is returned by hosts when Element.Call names a
	// method the node does not have.
	ErrUnsupportedMethod = errors.New(`browserfx: unsupported method`)

	// ErrMalformedURL is returned by hosts that reject malformed URLs.
	ErrMalformedURL = errors.New(`browserfx: malformed url`)

	// ErrStopped is returned when work is submitted to a stopped program.
	ErrStopped = errors.New(`browserfx: program stopped`)
)

// NotFoundError is the failure of a DOM query whose node did not exist when
// the query ran.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf(`browserfx: node not found: %q`, e.ID)
}

// Is matches ErrNotFound, and any *NotFoundError with the same ID (or with
// an empty ID).
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	var other *NotFoundError
	if errors.As(target, &other) {
		return other.ID == `` || other.ID == e.ID
	}
	return false
}

// MethodError wraps a host failure while invoking a node method.
type MethodError struct {
	Cause  error
	ID     string
	Method string
}

// Error implements the error interface.
func (e *MethodError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf(`browserfx: call %s on %q failed`, e.Method, e.ID)
	}
	return fmt.Sprintf(`browserfx: call %s on %q: %v`, e.Method, e.ID, e.Cause)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *MethodError) Unwrap() error {
	return e.Cause
}

// URLError reports a location that could not be parsed.
type URLError struct {
	Cause error
	URL   string
}

// Error implements the error interface.
func (e *URLError) Error() string {
	return fmt.Sprintf(`browserfx: invalid url %q: %v`, e.URL, e.Cause)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *URLError) Unwrap() error {
	return e.Cause
}

// PanicError wraps a value recovered from a panicking binding or callback.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf(`browserfx: panic: %v`, e.Value)
}

// Unwrap returns the panic value, if it is an error.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
