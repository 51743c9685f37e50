package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// Kind classifies failures that travel from the validator, scratch storage
// and transcription client up to the HTTP layer.
type Kind string

const (
	KindUnsupportedFormat Kind = "unsupported_format"
	KindFileTooLarge      Kind = "file_too_large"
	KindRateLimitExceeded Kind = "rate_limit_exceeded"
	KindInvalidCredential Kind = "invalid_api_key"
	KindProviderError     Kind = "provider_error"
	KindStorageError      Kind = "storage_error"
	KindUnknown           Kind = "unknown_error"
)

// Storage failure reasons, reported by Reason for KindStorageError.
const (
	ReasonNotFound         = "not_found"
	ReasonTooManyOpenFiles = "too_many_open_files"
	ReasonTimeout          = "timeout"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrUnsupportedFormat = New(KindUnsupportedFormat, "unsupported audio format")
	ErrFileTooLarge      = New(KindFileTooLarge, "file too large")
	ErrRateLimitExceeded = New(KindRateLimitExceeded, "rate limit exceeded")
	ErrInvalidCredential = New(KindInvalidCredential, "invalid API key")
	ErrProviderError     = New(KindProviderError, "provider error")
	ErrStorageError      = New(KindStorageError, "storage error")
)

// Error represents a classified error
type Error struct {
	kind    Kind
	reason  string
	message string
	cause   error
}

// New creates a new error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Newf creates a new formatted error of the given kind
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a kind and additional context
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    kind,
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with a kind and formatted context
func Wrapf(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind
}

// Kind returns the classification of the error
func (e *Error) Kind() Kind {
	return e.kind
}

// Reason returns the storage sub-reason, empty for other kinds
func (e *Error) Reason() string {
	return e.reason
}

// Message returns the message without the wrapped cause
func (e *Error) Message() string {
	return e.message
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// ReasonOf returns the storage reason of err, if any.
func ReasonOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.reason
	}
	return ""
}

// ClassifyStorage wraps a file system error as KindStorageError, recording
// whether the file was missing, the process ran out of descriptors or the
// operation timed out. Errors that are already classified pass through.
func ClassifyStorage(err error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return err
	}

	reason := ""
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		reason = ReasonNotFound
	case stderrors.Is(err, syscall.EMFILE), stderrors.Is(err, syscall.ENFILE):
		reason = ReasonTooManyOpenFiles
	case os.IsTimeout(err), stderrors.Is(err, os.ErrDeadlineExceeded):
		reason = ReasonTimeout
	}

	return &Error{
		kind:    KindStorageError,
		reason:  reason,
		message: message,
		cause:   err,
	}
}
