// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/naatfeed/internal/controller"
	"github.com/tomtom215/naatfeed/internal/database"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeSessionNotFound    = "SESSION_NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeFetch              = controller.ErrCodeFetch
)

// errorStatus maps a domain error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, controller.ErrSessionNotFound), errors.Is(err, controller.ErrControllerClosed):
		return http.StatusNotFound, ErrCodeSessionNotFound
	case errors.Is(err, database.ErrItemNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}
