// ABOUTME: Custom error types for the core business logic
// ABOUTME: Provides structured errors for better error handling and API responses

package errors

import (
	"errors"
	"fmt"

	"rss-downloader-api/core/domain"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// DownloaderError represents a failed dispatch to a download back-end.
// Transport marks connection-level failures (timeout, refused) as opposed
// to protocol-level rejections reported by the back-end itself.
type DownloaderError struct {
	Backend   domain.Downloader
	Message   string
	Transport bool
}

// Error implements the error interface
func (e *DownloaderError) Error() string {
	if e.Transport {
		return fmt.Sprintf("downloader %s transport error: %s", e.Backend, e.Message)
	}
	return fmt.Sprintf("downloader %s rejected request: %s", e.Backend, e.Message)
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsDownloader checks if an error is a DownloaderError
func IsDownloader(err error) bool {
	var dlErr *DownloaderError
	return errors.As(err, &dlErr)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
