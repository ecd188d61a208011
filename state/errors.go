// Package state provides the persisted storage layer: a namespaced
// key-value persister, per-service state stores, and the content-addressed
// spec store that lets admitted runs be reconstructed after a restart.
package state

import "fmt"

type Reason int

const (
	ReasonUnknown Reason = iota

	// The requested path does not exist.
	NotFound

	// The stored data contradicts itself or the caller; retrying will not
	// help and the enclosing operation must be failed.
	LogicError

	// The underlying storage failed; retrying may help.
	StorageFailure

	// The caller's input is invalid. Surfaced to the submitting user,
	// never fatal.
	InvalidArgument
)

func (r Reason) String() string {
	switch r {
	case NotFound:
		return "NOT_FOUND"
	case LogicError:
		return "LOGIC_ERROR"
	case StorageFailure:
		return "STORAGE_FAILURE"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	}
	return "UNKNOWN"
}

// Error is a storage error tagged with a reason code.
type Error struct {
	Reason Reason
	Msg    string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Msg)
}

func NewError(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

func WrapError(reason Reason, cause error, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// IsNotFound reports whether err is a storage error with the NotFound
// reason.
func IsNotFound(err error) bool {
	if serr, ok := err.(*Error); ok {
		return serr.Reason == NotFound
	}
	return false
}
