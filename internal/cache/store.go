// Package cache is the cache-through data layer: Redis read/write
// paths that sit in front of internal/store, with a documented
// miss/fallback contract (see Store.GetUsers and friends) and an
// explicit set of pipelined write operations that keep the
// denormalized sorted-set/list indexes in sync with each write.
package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Limit is the page size used by every list/zrange read.
	Limit = 20
	// LexBase is subtracted from a post id before it's used as a
	// posts_reply zset member (the score there is the reply count), so
	// posts with equal reply counts come back in ascending-id order
	// under ZREVRANGE (a descending scan over LexBase-pid is an
	// ascending scan over pid).
	LexBase = uint32(1<<32 - 1)
	// HashLife is the TTL applied to Topic and Post entity hashes
	// (but not Category or User — see ShouldExpire on Topic and Post).
	HashLife = 172800 * time.Second
	// MailLife is the TTL applied to a pending activation mail's
	// per-uuid hash.
	MailLife = 3600 * time.Second
)

// Store wraps a Redis client with the forum's cache-through
// operations. All methods are safe for concurrent use.
type Store struct {
	rdb *redis.Client
}

// New wraps an already-configured Redis client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Client exposes the underlying client for callers (e.g.
// internal/reconcile, which also hands it to internal/pkg/distlock)
// that need raw Redis access
// the cache-through API doesn't cover.
func (s *Store) Client() *redis.Client { return s.rdb }
