// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package models

import (
	"time"
)

// APIResponse is the envelope used by every HTTP endpoint.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "sort_mode must be one of: for_you recent popular",
//	    "details": {"field": "sort_mode"}
//	  },
//	  "metadata": {"timestamp": "2026-10-19T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: request parameters failed validation
//   - SESSION_NOT_FOUND: the feed session does not exist or was swept
//   - FETCH_ERROR: the content repository failed; partial data may be present
//   - DATABASE_ERROR: a repository write failed
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// FeedPage is the API view of a feed session's state.
type FeedPage struct {
	SessionID string        `json:"session_id"`
	Filter    FeedFilter    `json:"filter"`
	Items     []ContentItem `json:"items"`
	Offset    int           `json:"offset"`
	HasMore   bool          `json:"has_more"`
	Loading   bool          `json:"loading"`
	Error     *APIError     `json:"error,omitempty"`
}
