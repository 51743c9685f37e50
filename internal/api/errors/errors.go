package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	apperrors "hy-whisper/internal/app/errors"
)

// User-facing messages
const (
	MsgNoFile            = "No audio file was uploaded. Please choose a file."
	MsgFileTooLarge      = "File is too large. Maximum size: %s"
	MsgUnexpectedField   = `Unexpected file field. Use the "audio" field`
	MsgTooManyFiles      = "Only one file can be uploaded at a time"
	MsgUploadFailed      = "File upload error: %s"
	MsgRateLimited       = "API quota exceeded (rate limited). Try again later or check your OpenAI plan."
	MsgInvalidCredential = "Invalid OpenAI API key. Check the .env file."
	MsgProviderTooLarge  = "File is too large for the OpenAI API."
	MsgProviderFormat    = "OpenAI does not support this file format."
	MsgProviderError     = "OpenAI API error"
	MsgFallbackFailed    = "Audio processing failed. Check the file format and try again."
	MsgFileNotFound      = "File not found. Try uploading the file again."
	MsgOverloaded        = "Server is overloaded. Try again later."
	MsgTimeout           = "Request timed out. Try a smaller file."
	MsgUnexpected        = "An unexpected error occurred while processing the audio file"
	MsgInternal          = "Internal server error"
	MsgNotFound          = "Endpoint not found"
)

// APIError represents a structured API error response
type APIError struct {
	Status    int            `json:"-"`
	Kind      apperrors.Kind `json:"kind,omitempty"`
	Message   string         `json:"error"`
	Details   string         `json:"details,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the status code, defaulting to 500
func (e *APIError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// WithDetails attaches the raw error text when expose is true.
func (e *APIError) WithDetails(err error, expose bool) *APIError {
	if expose && err != nil {
		e.Details = err.Error()
	}
	return e
}

// WithTimestamp stamps the response in RFC 3339 UTC
func (e *APIError) WithTimestamp(t time.Time) *APIError {
	e.Timestamp = t.UTC().Format(time.RFC3339Nano)
	return e
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Kind:    apperrors.KindUnknown,
		Message: message,
	}
}

// NewNoFileError is returned when the request carries no audio part
func NewNoFileError() *APIError {
	return NewBadRequestError(MsgNoFile)
}

// NewFileTooLargeError reports an upload over the size ceiling
func NewFileTooLargeError(maxSizeHuman string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Kind:    apperrors.KindFileTooLarge,
		Message: fmt.Sprintf(MsgFileTooLarge, maxSizeHuman),
	}
}

// FromUpload translates errors raised while receiving and storing the file.
// Format and size rejections are the client's fault and map to 400.
func FromUpload(err error, maxSizeHuman string) *APIError {
	switch apperrors.KindOf(err) {
	case apperrors.KindUnsupportedFormat:
		message := MsgProviderFormat
		var e *apperrors.Error
		if stderrors.As(err, &e) {
			message = e.Message()
		}
		return &APIError{
			Status:  http.StatusBadRequest,
			Kind:    apperrors.KindUnsupportedFormat,
			Message: message,
		}
	case apperrors.KindFileTooLarge:
		return NewFileTooLargeError(maxSizeHuman)
	default:
		return FromUnexpected(err)
	}
}

// FromProvider translates a transcription client failure into a 500 with a
// message chosen by kind.
func FromProvider(err error) *APIError {
	kind := apperrors.KindOf(err)

	var message string
	switch kind {
	case apperrors.KindRateLimitExceeded:
		message = MsgRateLimited
	case apperrors.KindInvalidCredential:
		message = MsgInvalidCredential
	case apperrors.KindFileTooLarge:
		message = MsgProviderTooLarge
	case apperrors.KindUnsupportedFormat:
		message = MsgProviderFormat
	case apperrors.KindStorageError:
		return FromUnexpected(err)
	default:
		kind = apperrors.KindProviderError
		message = MsgProviderError
	}

	return &APIError{
		Status:  http.StatusInternalServerError,
		Kind:    kind,
		Message: message,
	}
}

// FromFallback translates a demo transcriber failure
func FromFallback(err error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Kind:    apperrors.KindOf(err),
		Message: MsgFallbackFailed,
	}
}

// FromUnexpected translates anything the pipeline did not anticipate. Known
// file system conditions get a specific message, the rest a generic one.
func FromUnexpected(err error) *APIError {
	apiErr := &APIError{
		Status:  http.StatusInternalServerError,
		Kind:    apperrors.KindOf(err),
		Message: MsgUnexpected,
	}

	switch {
	case apperrors.ReasonOf(err) == apperrors.ReasonNotFound:
		apiErr.Message = MsgFileNotFound
	case apperrors.ReasonOf(err) == apperrors.ReasonTooManyOpenFiles:
		apiErr.Message = MsgOverloaded
	case apperrors.ReasonOf(err) == apperrors.ReasonTimeout,
		stderrors.Is(err, context.DeadlineExceeded):
		apiErr.Message = MsgTimeout
	}
	return apiErr
}
