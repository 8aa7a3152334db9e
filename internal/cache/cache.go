// Package cache provides TTL-bounded key/value caches shielding the
// expensive per-symbol upstream lookups.
package cache

import (
	"context"
	"time"
)

// Namespace names for the cached quantities. Each namespace gets its own
// cache instance and TTL because the underlying data changes at very
// different rates.
const (
	NamespaceAvgVolume = "avgvol" // historical average volume, changes slowly intraday
	NamespaceFloat     = "float"  // float / shares outstanding, rarely changes
	NamespaceNews      = "news"   // news presence, a negative result must expire quickly
)

// Cache stores values by key with a per-entry TTL. An entry whose expiry has
// passed is treated as absent. Negative results (zero volume, false news) are
// stored too and are authoritative until expiry.
type Cache[V any] interface {
	// Get returns the cached value and true, or the zero value and false
	// when the key is absent or expired.
	Get(ctx context.Context, key string) (V, bool)

	// Set stores value under key for the given TTL, replacing any
	// previous entry.
	Set(ctx context.Context, key string, value V, ttl time.Duration)
}
