// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
//
// Handlers never surface these to the end user directly; i18n.UserFacing
// maps each sentinel to a localized apology string.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrProviderTimeout indicates an outbound provider call timed out or
	// failed transiently (5xx, connection reset).
	ErrProviderTimeout = errors.New("provider timeout")

	// ErrMediaTooLarge indicates an attachment exceeded the download ceiling.
	ErrMediaTooLarge = errors.New("media too large")

	// ErrUnsupportedType indicates a message type the bot cannot process.
	ErrUnsupportedType = errors.New("unsupported message type")

	// ErrTranscriptionFailed indicates speech-to-text failed after retries.
	ErrTranscriptionFailed = errors.New("transcription failed")

	// ErrVisionFailed indicates the image description call failed.
	ErrVisionFailed = errors.New("vision failed")

	// ErrRateLimited indicates a sender exceeded the inbound message window.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidPayload indicates a webhook payload that could not be parsed.
	ErrInvalidPayload = errors.New("invalid webhook payload")

	// ErrEmptyCompletion indicates the completion provider returned no text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// GraphError represents a Meta Graph API failure with context.
type GraphError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *GraphError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("graph api error (url=%s, status=%d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("graph api error (url=%s): %v", e.URL, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// NewGraphError creates a new Graph API error.
func NewGraphError(url string, statusCode int, err error) *GraphError {
	return &GraphError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
