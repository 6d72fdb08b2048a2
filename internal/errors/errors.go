// Package errors defines the service's classified errors and their HTTP status.
//
// Every failure that reaches a client passes through an AppError. The
// Message is the only text a client ever sees; the Cause is logged
// server-side and never serialized.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so a wrapped copy of a predefined error still compares
// equal to it with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of e carrying cause. The predefined errors are
// shared values and must not be mutated.
func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Status: e.Status, Cause: cause}
}

// WithMessage returns a copy of e with a different client-facing message.
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{Code: e.Code, Message: message, Status: e.Status, Cause: e.Cause}
}

var (
	ErrEngineUnavailable = &AppError{Code: "OCR_001", Message: "OCR service not initialized", Status: http.StatusServiceUnavailable}
	ErrProcessingFailed  = &AppError{Code: "OCR_002", Message: "Internal server error during OCR processing", Status: http.StatusInternalServerError}

	ErrNoImage            = &AppError{Code: "UPLOAD_001", Message: "No image file provided", Status: http.StatusBadRequest}
	ErrNoFileSelected     = &AppError{Code: "UPLOAD_002", Message: "No file selected", Status: http.StatusBadRequest}
	ErrFileTypeNotAllowed = &AppError{Code: "UPLOAD_003", Message: "File type not allowed", Status: http.StatusBadRequest}
	ErrInvalidImage       = &AppError{Code: "UPLOAD_004", Message: "Failed to read image file", Status: http.StatusBadRequest}
	ErrFileTooLarge       = &AppError{Code: "UPLOAD_005", Message: "File too large", Status: http.StatusRequestEntityTooLarge}

	ErrNotFound = &AppError{Code: "GEN_001", Message: "Endpoint not found", Status: http.StatusNotFound}
	ErrInternal = &AppError{Code: "GEN_002", Message: "Internal server error", Status: http.StatusInternalServerError}
)

// IsAppError reports whether err is, or wraps, an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// As returns the outermost AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func GetCode(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// StatusOf returns the HTTP status for err, 500 when it is unclassified.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
