package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// InternalError is the error type produced by the builder. It carries a
// developer-facing message, an optional user-facing hint and optional
// structured details that are safe to report externally.
type InternalError struct {
	cause             error
	message           string
	hint              string
	reportableDetails map[string]interface{}
}

func (e *InternalError) Error() string {
	if e.cause != nil && e.message != "" {
		return fmt.Sprintf("%s: %s", e.message, e.cause.Error())
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.message
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Hint returns the user-facing hint attached to the error, if any.
func (e *InternalError) Hint() string {
	return e.hint
}

// ReportableDetails returns structured details that are safe to expose.
func (e *InternalError) ReportableDetails() map[string]interface{} {
	return e.reportableDetails
}

// ErrorBuilder assembles an InternalError. The terminal Mark call attaches
// the sentinel classification and returns the error.
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts building an error with the given message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{message: message}}
}

// NewErrorf starts building an error with a formatted message.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return NewError(fmt.Sprintf(format, args...))
}

// WithError starts building an error that wraps an existing cause.
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{cause: err}}
}

// WithMessage sets the developer-facing message.
func (b *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	b.err.message = message
	return b
}

// WithHint sets a user-facing hint describing how to resolve the error.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithReportableDetails attaches structured details that are safe to expose
// in API responses.
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.err.reportableDetails = details
	return b
}

// Mark classifies the error with a sentinel and finalizes it.
func (b *ErrorBuilder) Mark(sentinel error) error {
	return errors.Mark(b.err, sentinel)
}
