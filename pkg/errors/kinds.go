package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the sync pipeline wraps exactly one
// of these so callers can branch with errors.Is.
var (
	// ErrIO covers unreadable directories and files, and copy, remove or
	// mkdir failures, including permission and already-exists races.
	ErrIO = errors.New("io error")
	// ErrConfiguration marks a source/target pair that cannot be synced,
	// such as identical roots.
	ErrConfiguration = errors.New("configuration error")
	// ErrIntegrity marks a broken internal invariant, for example an update
	// whose two records do not share a relative key.
	ErrIntegrity = errors.New("integrity error")
)

// OpError records the kind, operation and path of a failed step.
type OpError struct {
	Kind error
	Op   string
	Path string
	Err  error
}

// NewOpError builds an OpError. kind should be one of ErrIO,
// ErrConfiguration or ErrIntegrity.
func NewOpError(kind error, op, path string, err error) *OpError {
	return &OpError{Kind: kind, Op: op, Path: path, Err: err}
}

// IO wraps err as an ErrIO for op on path.
func IO(op, path string, err error) *OpError {
	return NewOpError(ErrIO, op, path, err)
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}

	return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
}

// Is matches the error's kind so errors.Is(err, ErrIO) works through wrapping.
func (e *OpError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *OpError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind wrapped by err, or nil if it has none.
func KindOf(err error) error {
	for _, kind := range []error{ErrConfiguration, ErrIntegrity, ErrIO} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}
