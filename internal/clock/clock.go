// Package clock supplies the current unix time to the governance program.
package clock

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// Clock returns the current unix time in seconds.
type Clock interface {
	Now(ctx context.Context) (int64, error)
}

// System reads the local wall clock.
type System struct{}

// Now returns the wall clock time.
func (System) Now(context.Context) (int64, error) {
	return time.Now().Unix(), nil
}

// Manual is a settable clock.
type Manual struct {
	mu  sync.Mutex
	now int64
}

// NewManual returns a clock fixed at now.
func NewManual(now int64) *Manual {
	return &Manual{now: now}
}

// Now returns the current setting.
func (m *Manual) Now(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now, nil
}

// Set moves the clock to now.
func (m *Manual) Set(now int64) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += int64(d / time.Second)
	m.mu.Unlock()
}

// TimestampSource reports the latest block timestamp of a chain.
type TimestampSource interface {
	LatestTimestamp(ctx context.Context) (uint64, error)
}

// Chain follows the latest block time of an RPC endpoint.
type Chain struct {
	source TimestampSource
}

// NewChain builds a clock over source.
func NewChain(source TimestampSource) *Chain {
	return &Chain{source: source}
}

// Now returns the latest block timestamp.
func (c *Chain) Now(ctx context.Context) (int64, error) {
	ts, err := c.source.LatestTimestamp(ctx)
	if err != nil {
		return 0, fmt.Errorf("latest block time: %w", err)
	}
	if ts > math.MaxInt64 {
		return 0, fmt.Errorf("block time out of range: %d", ts)
	}
	return int64(ts), nil
}
