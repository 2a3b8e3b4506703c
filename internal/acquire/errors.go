package acquire

import (
	"errors"
	"fmt"

	"github.com/entitylens/entitylens-api/internal/constants"
)

// Error is an acquisition failure with enough classification for the chain
// to decide between retrying, tripping the breaker, and falling back.
type Error struct {
	// Backend that produced the failure.
	Backend string

	// Category classifies the failure.
	Category constants.ErrorCategory

	// Signal names the protection signal for blocked failures.
	Signal string

	// StatusCode is the HTTP status when one was received.
	StatusCode int

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Category, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Category)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps a failure with its category.
func newError(backend string, category constants.ErrorCategory, err error) *Error {
	return &Error{Backend: backend, Category: category, Err: err}
}

// CategoryOf extracts the error category, defaulting to unknown for errors
// raised outside the acquisition layer.
func CategoryOf(err error) constants.ErrorCategory {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Category
	}
	return constants.ErrorCategoryUnknown
}

// categoryForStatus maps an HTTP status from a backend API to a category.
func categoryForStatus(status int) constants.ErrorCategory {
	switch {
	case status == 401 || status == 403:
		return constants.ErrorCategoryAuth
	case status == 402:
		return constants.ErrorCategoryQuotaExceeded
	case status == 429:
		return constants.ErrorCategoryRateLimit
	case status >= 500:
		return constants.ErrorCategoryBackendError
	default:
		return constants.ErrorCategoryUnknown
	}
}
