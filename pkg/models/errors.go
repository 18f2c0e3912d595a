package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies runtime errors of a monitor run.
type Kind string

const (
	// KindFetch is used for network, status and decoding failures while
	// retrieving the monitored resource.
	KindFetch Kind = "FetchError"

	// KindExtraction is used if no value could be extracted from the fetched
	// content.
	KindExtraction Kind = "ExtractionError"

	// KindStore is used for failures of the state store.
	KindStore Kind = "StoreError"

	// KindNotify is used for notification delivery failures.
	KindNotify Kind = "NotifyError"
)

// Error is a runtime error of a specific Kind.
type Error struct {
	Kind Kind
	Err  error
}

// NewError wraps err into an *Error of given kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Errorf creates an *Error of given kind with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

// Error implements error.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Summary returns the one-line representation that is sent to notification
// channels, e.g. "Error: FetchError: connection refused". The name between
// "Error:" and the message is the pipeline Kind, not the type name of the
// underlying cause.
func (e *Error) Summary() string {
	return fmt.Sprintf("Error: %s: %s", e.Kind, e.Err.Error())
}

// KindOf returns the Kind of err. Errors that are not of type *Error are
// reported as "Error".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return "Error"
}

// Summarize returns the notification summary for any error.
func Summarize(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Summary()
	}

	return fmt.Sprintf("Error: %s: %s", KindOf(err), err.Error())
}
