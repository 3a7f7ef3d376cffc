package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// IsValidation reports whether the cause of err is a *ValidationError wrapping target (any when target is nil).
func IsValidation(err error, target error) bool {
	vErr, ok := errors.Cause(err).(*ValidationError)
	if !ok {
		return false
	}
	return target == nil || vErr.Err == target
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

// notFound: the queried data (term dates, template, ...) is not registered.
type notFound struct {
	message string
}

func NewNotFoundError(msg string) error {
	return &notFound{message: msg}
}

func (e notFound) Error() string {
	return e.message
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*notFound)
	return ok
}

// outOfRange: a term, week, date or duration lies outside the registered bounds.
type outOfRange struct {
	message string
}

func NewOutOfRangeError(msg string) error {
	return &outOfRange{message: msg}
}

func (e outOfRange) Error() string {
	return e.message
}

func IsOutOfRange(err error) bool {
	_, ok := errors.Cause(err).(*outOfRange)
	return ok
}

type invalidOperation struct {
	message string
}

func NewInvalidOperationError(msg string) error {
	return &invalidOperation{message: msg}
}

func (e invalidOperation) Error() string {
	return e.message
}

func IsInvalidOperation(err error) bool {
	_, ok := errors.Cause(err).(*invalidOperation)
	return ok
}
