package designgen

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FallbackErrorMessage is shown when a failed generation carries no message.
const FallbackErrorMessage = "An unexpected error occurred."

// RateLimitError is returned when a rate limit is hit.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// ProviderError is a failure reported by an image provider. Message is
// shown to the user verbatim; an empty Message falls back to
// FallbackErrorMessage.
type ProviderError struct {
	Message string
	Err     error
}

// NewProviderError wraps err with a user-facing message.
func NewProviderError(message string, err error) *ProviderError {
	return &ProviderError{Message: message, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

var (
	// ErrStorageNotConfigured is returned when an export is attempted
	// without a configured storage backend.
	ErrStorageNotConfigured = errors.New("storage not configured")

	// ErrNothingToExport is returned when an export is attempted while no
	// finished design is available.
	ErrNothingToExport = errors.New("no design available to export")

	// ErrNoImage is the failure recorded when a provider resolves without an image.
	ErrNoImage = errors.New("no image was generated")

	// ErrGenerationTimeout is the failure recorded when a provider call
	// outlives the controller's timeout.
	ErrGenerationTimeout = errors.New("image generation timed out")

	// ErrGenerationCancelled is the failure recorded when the controller is
	// closed while a provider call is in flight.
	ErrGenerationCancelled = errors.New("image generation was cancelled")
)

// ErrorMessage derives the user-facing message for a failed generation.
// The Message of a *ProviderError anywhere in the chain wins, even when
// empty; otherwise the error text is used. Blank messages become
// FallbackErrorMessage.
func ErrorMessage(err error) string {
	if err == nil {
		return FallbackErrorMessage
	}

	var msg string
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		msg = provErr.Message
	} else {
		msg = err.Error()
	}

	if msg = strings.TrimSpace(msg); msg == "" {
		return FallbackErrorMessage
	}
	return msg
}

// AsProviderError returns err unchanged if it already carries a
// *ProviderError, otherwise wraps it with its own text as the message.
func AsProviderError(err error) error {
	if err == nil {
		return nil
	}
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return err
	}
	return NewProviderError(err.Error(), err)
}
