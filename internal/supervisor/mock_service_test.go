// Naatfeed - Personalized Devotional Clip Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/naatfeed

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService fails its first fails runs, then blocks until canceled.
type mockService struct {
	name   string
	fails  int32
	starts atomic.Int32
	stops  atomic.Int32
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) Serve(ctx context.Context) error {
	n := m.starts.Add(1)
	defer m.stops.Add(1)
	if n <= m.fails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
