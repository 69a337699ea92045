// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package middleware provides HTTP instrumentation middleware for the chi router.

  - PrometheusMetrics: request count, latency histogram and in-flight gauge
  - PerformanceMonitor: sliding window of recent latencies with percentiles,
    served at /api/v1/health/performance, plus slow-request logging

Both label requests by chi route pattern rather than raw path, so session
IDs in URLs do not create one series per session. Mount them inside the
router (r.Use) so the pattern is known when the handler returns.
*/
package middleware
