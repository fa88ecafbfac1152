// ABOUTME: Error handling utilities for API handlers
// ABOUTME: Converts domain errors to appropriate HTTP responses

package handlers

import (
	stderrors "errors"

	"github.com/danielgtaylor/huma/v2"

	"rss-downloader-api/core/domain"
	"rss-downloader-api/core/errors"
)

// toHumaError converts domain errors to appropriate Huma HTTP errors
func toHumaError(err error) error {
	if err == nil {
		return nil
	}

	// Check for specific error types
	if errors.IsNotFound(err) {
		return huma.Error404NotFound(err.Error())
	}

	if errors.IsValidation(err) {
		return huma.Error400BadRequest(err.Error())
	}

	var cfgErr *domain.ConfigError
	if stderrors.As(err, &cfgErr) {
		return huma.Error422UnprocessableEntity(err.Error())
	}

	if errors.IsDownloader(err) {
		// Both transport failures and back-end rejections are upstream
		// problems the client cannot fix by changing the request
		return huma.Error502BadGateway(err.Error())
	}

	// Default to internal server error for unknown errors
	return huma.Error500InternalServerError("Internal server error", err)
}
