// Package cache holds the redis-backed seat-map cache. Seat maps are read on
// every kiosk/agent screen refresh while mutations are comparatively rare, so
// the rendered JSON is cached per flight and invalidated by every operation
// that touches the flight's inventory.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no cached seat map exists for the flight.
var ErrCacheMiss = errors.New("seat map not cached")

// SeatMapCache stores rendered seat-map responses keyed by flight. A nil
// client disables the cache: Get always misses and Set/Invalidate are no-ops,
// so callers need no special casing when redis is down.
type SeatMapCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeatMapCache constructs a SeatMapCache. client may be nil.
func NewSeatMapCache(client *redis.Client, ttl time.Duration) *SeatMapCache {
	return &SeatMapCache{client: client, ttl: ttl}
}

// Get returns the cached seat-map payload for a flight.
func (c *SeatMapCache) Get(ctx context.Context, flightID uint64) ([]byte, error) {
	if c.client == nil {
		return nil, ErrCacheMiss
	}
	b, err := c.client.Get(ctx, c.key(flightID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("seat map cache get: %w", err)
	}
	return b, nil
}

// Set stores the rendered seat-map payload for a flight.
func (c *SeatMapCache) Set(ctx context.Context, flightID uint64, payload []byte) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, c.key(flightID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("seat map cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached seat map after an inventory mutation.
func (c *SeatMapCache) Invalidate(ctx context.Context, flightID uint64) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, c.key(flightID)).Err(); err != nil {
		return fmt.Errorf("seat map cache invalidate: %w", err)
	}
	return nil
}

func (c *SeatMapCache) key(flightID uint64) string {
	return fmt.Sprintf("seatmap:flight:%d", flightID)
}
