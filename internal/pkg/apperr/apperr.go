// internal/pkg/apperr/apperr.go
//
// Package apperr carries the error taxonomy the HTTP layer maps onto
// status codes. Services return these; handlers never inspect error
// strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for boundary handling
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindInsufficientStock
	KindForbidden
	KindConfiguration
	KindConflict
	KindStorage
)

// String returns the kind's name for logs
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindForbidden:
		return "forbidden"
	case KindConfiguration:
		return "configuration"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Error is a classified application error
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports invalid input
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing record
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStock reports a deduction that would drive stock negative
func InsufficientStock(format string, args ...interface{}) error {
	return &Error{Kind: KindInsufficientStock, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden reports an operation the caller may not perform
func Forbidden(format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Configuration reports a broken deployment invariant, such as a missing
// well-known record.
func Configuration(format string, args ...interface{}) error {
	return &Error{Kind: KindConfiguration, Msg: fmt.Sprintf(format, args...)}
}

// Conflict reports a unique-key collision
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Storage wraps an unexpected database error
func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// KindOf returns the classification of err, or KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
