// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

// Package validation provides struct validation using go-playground/validator v10.
//
// A singleton validator (thread-safe, caches struct info) is configured with
// json tag field names and two custom rules:
//   - sortmode: for_you, recent, or popular
//   - channelid: an upstream channel ID or "all"
//
// Example:
//
//	type feedRequest struct {
//	    ChannelID string `json:"channel_id" validate:"omitempty,channelid"`
//	    SortMode  string `json:"sort_mode" validate:"omitempty,sortmode"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError() // Code: VALIDATION_ERROR
//	}
package validation
