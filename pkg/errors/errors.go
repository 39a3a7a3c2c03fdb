package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock the row was modified by another operation
var ErrOptimisticLock = errors.New("record was modified by another operation, please reload and retry")

// Kind classifies an AppError for callers and the transport layer
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindBusinessRule
	KindValidation
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBusinessRule:
		return "business_rule"
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// AppError business error; errors.Is matches kind and message
type AppError struct {
	Kind    Kind
	Message string
}

func (e *AppError) Error() string { return e.Message }

// Is lets package-level AppError values act as sentinels
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// NotFound target entity does not exist or is inactive
func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

// NotFoundf formats a NotFound message
func NotFoundf(format string, args ...interface{}) *AppError {
	return NotFound(fmt.Sprintf(format, args...))
}

// Business a business precondition failed
func Business(msg string) *AppError {
	return &AppError{Kind: KindBusinessRule, Message: msg}
}

// Businessf formats a Business message
func Businessf(format string, args ...interface{}) *AppError {
	return Business(fmt.Sprintf(format, args...))
}

// Validation request payload is malformed
func Validation(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg}
}

// Forbidden the actor lacks permission on the target
func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

// KindOf returns the kind of err, or 0 when err is not an AppError
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// IsNotFound reports whether err is a NotFound AppError
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsBusiness reports whether err is a BusinessRule AppError
func IsBusiness(err error) bool { return KindOf(err) == KindBusinessRule }

// IsForbidden reports whether err is a Forbidden AppError
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }
