package repositories

import (
	"context"
	"time"
)

// ReferenceCache reserves business references so an ambiguous create failure
// can be retried without duplicating a transaction. An implementation may be
// absent (nil), in which case dedup degrades to the database's unique index.
type ReferenceCache interface {
	// Reserve claims the reference; returns false if already claimed.
	Reserve(ctx context.Context, reference string, ttl time.Duration) (bool, error)

	// Release frees the reference after a definitive failure so the caller can retry.
	Release(ctx context.Context, reference string) error
}
