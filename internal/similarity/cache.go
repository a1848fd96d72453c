package similarity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// KV is the cache surface the decorator needs. Satisfied by *cache.Cache.
type KV interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedOracle memoizes lookups per unit text. Moderation inputs repeat
// heavily, and each miss costs an embedding call plus an index query.
// Cache failures fall through to the inner oracle. Negative results are
// cached too.
type CachedOracle struct {
	inner Oracle
	kv    KV
	ttl   time.Duration
}

func NewCachedOracle(inner Oracle, kv KV, ttl time.Duration) *CachedOracle {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedOracle{inner: inner, kv: kv, ttl: ttl}
}

type cachedEntry struct {
	Found bool   `json:"found"`
	Match *Match `json:"match,omitempty"`
}

func (c *CachedOracle) Query(ctx context.Context, unit string) (*Match, error) {
	key := cacheKey(unit)

	var entry cachedEntry
	if err := c.kv.Get(ctx, key, &entry); err == nil {
		if !entry.Found {
			return nil, nil
		}
		return entry.Match, nil
	}

	m, err := c.inner.Query(ctx, unit)
	if err != nil {
		return nil, err
	}

	// Best effort; a failed write just means the next query misses.
	_ = c.kv.Set(ctx, key, cachedEntry{Found: m != nil, Match: m}, c.ttl)

	return m, nil
}

func cacheKey(unit string) string {
	sum := sha256.Sum256([]byte(unit))
	return "similarity:unit:" + hex.EncodeToString(sum[:])
}
