package upload

import (
	"strconv"
	"strings"

	apperrors "github.com/ironsheep/ocr-api/internal/errors"
)

// Policy is the set of rules an upload must satisfy.
type Policy struct {
	// AllowedExtensions are lower-case extensions without the dot, in the
	// order they are reported to clients.
	AllowedExtensions []string

	// MaxFileSize is the request body cap in bytes.
	MaxFileSize int64
}

// Extension returns the lower-cased text after the last "." in name, and
// false when name has no ".".
func Extension(name string) (string, bool) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", false
	}
	return strings.ToLower(name[i+1:]), true
}

// Allowed reports whether name carries a whitelisted extension.
func (p Policy) Allowed(name string) bool {
	ext, ok := Extension(name)
	if !ok {
		return false
	}
	for _, a := range p.AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// CheckFilename validates the client filename of an upload part.
func (p Policy) CheckFilename(name string) error {
	if name == "" {
		return apperrors.ErrNoFileSelected
	}
	if !p.Allowed(name) {
		return apperrors.ErrFileTypeNotAllowed.WithMessage(p.TypeNotAllowedMessage())
	}
	return nil
}

// TypeNotAllowedMessage is the client message for a rejected extension.
func (p Policy) TypeNotAllowedMessage() string {
	return "File type not allowed. Allowed types: " + strings.Join(p.AllowedExtensions, ", ")
}

// TooLargeMessage is the client message for an oversized body.
func (p Policy) TooLargeMessage() string {
	return "File too large. Maximum size is " + formatMB(p.MaxFileSize) + "MB"
}

// TooLarge returns the classified error for an oversized body.
func (p Policy) TooLarge() *apperrors.AppError {
	return apperrors.ErrFileTooLarge.WithMessage(p.TooLargeMessage())
}

// MaxFileSizeMB is the size cap in mebibytes.
func (p Policy) MaxFileSizeMB() float64 {
	return float64(p.MaxFileSize) / (1 << 20)
}

func formatMB(size int64) string {
	return strconv.FormatFloat(float64(size)/(1<<20), 'f', -1, 64)
}
