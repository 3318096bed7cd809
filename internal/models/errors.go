package models

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced to callers wraps exactly one of these,
// so errors.Is can be used to branch on the kind.
var (
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrReferentialIntegrity = errors.New("still referenced")
	ErrTransactionAborted   = errors.New("transaction aborted")
)

// Error carries a kind plus a human-readable detail message.
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Kind.Error()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Invalidf reports a missing or malformed field.
func Invalidf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Detail: fmt.Sprintf(format, args...)}
}

// NotFoundf reports a reference that does not resolve.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Detail: fmt.Sprintf(format, args...)}
}

// Conflictf reports a unique-constraint collision.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Detail: fmt.Sprintf(format, args...)}
}

// InUsef reports a delete blocked by dependent rows.
func InUsef(format string, args ...any) error {
	return &Error{Kind: ErrReferentialIntegrity, Detail: fmt.Sprintf(format, args...)}
}

// Aborted marks err as the reason a transaction was rolled back. The detail
// of err is kept so callers still see the first offending record.
func Aborted(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrTransactionAborted, Detail: err.Error(), Err: err}
}

// KindName returns the machine-readable name of the outermost kind carried by err.
func KindName(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal"
	}
	switch e.Kind {
	case ErrValidation:
		return "validation"
	case ErrConflict:
		return "conflict"
	case ErrNotFound:
		return "not_found"
	case ErrReferentialIntegrity:
		return "referential_integrity"
	case ErrTransactionAborted:
		return "transaction_aborted"
	default:
		return "internal"
	}
}
