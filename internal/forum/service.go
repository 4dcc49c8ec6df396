// Package forum is the use-case layer HTTP handlers call into: it
// composes internal/idalloc, internal/store, and internal/cache the
// way original_source/src/handler/{topic,post,category,user}_async.rs
// compose the ID allocator, Diesel, and the Redis actor — allocate an
// id, write the primary store, then write through to the cache, and
// on a cache-write failure enqueue the id for internal/reconcile
// instead of failing the caller's request (spec.md §4.1.2/§7).
package forum

import (
	"context"

	"github.com/ignite/pixelforum/internal/cache"
	"github.com/ignite/pixelforum/internal/idalloc"
	"github.com/ignite/pixelforum/internal/logger"
	"github.com/ignite/pixelforum/internal/reconcile"
	"github.com/ignite/pixelforum/internal/store"
)

// Service is the single entry point HTTP and WebSocket handlers use
// to read and write forum entities. It never talks to Postgres or
// Redis directly for anything the cache-through layer already covers.
type Service struct {
	store  *store.Pool
	cache  *cache.Store
	ids    *idalloc.Allocator
	failed *reconcile.FailedWriter
}

// New builds a Service over an already-initialized store/cache/
// allocator/failed-write queue.
func New(st *store.Pool, c *cache.Store, ids *idalloc.Allocator, failed *reconcile.FailedWriter) *Service {
	return &Service{store: st, cache: c, ids: ids, failed: failed}
}

// pushFailed enqueues a cache-write failure for the reconciliation
// scheduler to retry, per the write-path contract: cache-repair
// failures are never surfaced to the caller (spec.md §7).
func (s *Service) pushFailed(kind reconcile.FailedKind, id uint32, err error) {
	logger.Warn("forum: cache write failed, enqueuing retry", "kind", kind.String(), "id", id, "error", err.Error())
	s.failed.Push(reconcile.FailedMessage{Kind: kind, ID: id})
}

// repairAsync schedules (never awaits) a best-effort cache repair for
// a read-path miss, matching the cache-through layer's miss contract:
// a miss always falls back to the store for the caller, and the
// repair that follows runs fire-and-forget so a slow or failing
// Redis never slows down the response that already has its data.
func repairAsync(fn func(ctx context.Context) error) {
	go func() {
		ctx := context.Background()
		if err := fn(ctx); err != nil {
			logger.Warn("forum: cache repair failed", "error", err.Error())
		}
	}()
}
