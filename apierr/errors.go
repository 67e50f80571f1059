package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies an error returned by the client.
type Kind int

const (
	// Unclassified is the zero Kind and never produced by New or Wrap.
	Unclassified Kind = iota
	Authentication
	NotFound
	RateLimited
	Validation
	Transport
	ServerError
)

// String returns the error type name used in structured error output.
func (k Kind) String() string {
	switch k {
	case Authentication:
		return "AuthenticationError"
	case NotFound:
		return "NotFoundError"
	case RateLimited:
		return "RateLimitError"
	case Validation:
		return "ValidationError"
	case Transport:
		return "ConnectionError"
	case ServerError:
		return "ServerError"
	default:
		return "Error"
	}
}

// Error is a classified error carrying enough context to produce an
// actionable message.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int    // originating HTTP status, 0 when not from a response
	ID         string // offending object id, if any
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.ID != "" {
		msg = fmt.Sprintf("%s (id %s)", msg, e.ID)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: HTTP %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind that keeps err as its cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithID returns a copy of e annotated with the offending id.
func (e *Error) WithID(id string) *Error {
	c := *e
	c.ID = id
	return &c
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return Unclassified
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsNotFound checks if the error indicates a missing object
func IsNotFound(err error) bool {
	return Is(err, NotFound)
}

// IsUnauthorized checks if the error indicates an authentication failure
func IsUnauthorized(err error) bool {
	return Is(err, Authentication)
}

// Retryable reports whether a bounded retry may succeed.
func Retryable(err error) bool {
	switch KindOf(err) {
	case Transport, ServerError:
		return true
	}
	return false
}
