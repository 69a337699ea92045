// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

/*
Package controller pages feeds for viewing sessions.

A Controller exposes three operations over the currently selected filter:

  - LoadMore: appends the next page. Concurrent calls while a load is in
    flight, and calls after the feed is exhausted, return without fetching.
  - Refresh: drops every cached page and the session ordering for the current
    filter and loads the first page again. The filter is kept.
  - SetFilter: switches to another (channel, sort) key and starts its view
    from the first page. Other keys keep their caches.

For the "for_you" sort pages are sliced from an ordering built by
feed.Assembler and kept in a session.Cache, so paging within the session TTL
never re-randomizes. Pages already delivered are never changed when
background widening replaces the ordering; later pages come from the newest
ordering, skipping items already shown. "recent" and "popular" sorts page
directly over the repository.

A failed load keeps the visible items, leaves HasMore unchanged and exposes
the error through State.

Manager creates, tracks and expires Controllers for the HTTP API.
*/
package controller
