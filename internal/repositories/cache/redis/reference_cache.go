package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	portsrepo "github.com/mosala/cashdesk_backend/internal/core/ports/repositories"
	goredis "github.com/redis/go-redis/v9"
)

// ReferenceCache implements portsrepo.ReferenceCache using Redis SET NX.
// It front-runs the database unique index so a retried create can tell
// "already claimed" apart from "never attempted" without a round trip.
type ReferenceCache struct {
	client *goredis.Client
	prefix string
}

// NewReferenceCache creates a Redis-backed reference cache.
func NewReferenceCache(client *goredis.Client) *ReferenceCache {
	return &ReferenceCache{
		client: client,
		prefix: "txref:",
	}
}

// Ensure ReferenceCache implements portsrepo.ReferenceCache
var _ portsrepo.ReferenceCache = (*ReferenceCache)(nil)

// Reserve claims the reference; returns false when another create already holds it.
func (c *ReferenceCache) Reserve(ctx context.Context, reference string, ttl time.Duration) (bool, error) {
	result, err := c.client.SetArgs(ctx, c.prefix+reference, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis reference reserve: %w", err)
	}
	return result == "OK", nil
}

// Release frees the reference after a definitive create failure.
func (c *ReferenceCache) Release(ctx context.Context, reference string) error {
	if err := c.client.Del(ctx, c.prefix+reference).Err(); err != nil {
		return fmt.Errorf("redis reference release: %w", err)
	}
	return nil
}
