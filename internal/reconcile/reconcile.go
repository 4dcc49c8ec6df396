// Package reconcile runs the two background tickers that keep the
// Redis cache-through layer converged with internal/store: a
// list-rebuild pass that recomputes each category's popularity-ordered
// topic list, and a failed-write drain that retries cache writes the
// write-through path couldn't commit the first time.
//
// Grounded on original_source/src/handler/cache_update.rs.
package reconcile

import (
	"context"
	"time"

	"github.com/ignite/pixelforum/internal/logger"
)

const (
	// ListInterval is how often the popularity list rebuild runs.
	ListInterval = 5 * time.Second
	// FailedInterval is how often the failed-write queue is drained.
	FailedInterval = 3 * time.Second
)

// Reporter receives errors this package can't otherwise surface — the
// list-rebuild pass logs and continues regardless (it runs again in
// ListInterval), but the failure is worth recording for the digest
// internal/errreport builds. A nil Reporter is valid; errors are only
// logged in that case.
type Reporter interface {
	Report(kind string, err error)
}

func report(r Reporter, kind string, err error) {
	logger.Error("reconcile task failed", "kind", kind, "error", err.Error())
	if r != nil {
		r.Report(kind, err)
	}
}

// Scheduler owns the two ticker loops. Both are started by Run and
// stop when ctx is cancelled.
type Scheduler struct {
	list     *ListUpdater
	failed   *FailedWriter
	reporter Reporter
}

// New builds a Scheduler from its two task implementations.
func New(list *ListUpdater, failed *FailedWriter, reporter Reporter) *Scheduler {
	return &Scheduler{list: list, failed: failed, reporter: reporter}
}

// Run blocks until ctx is cancelled, driving both tickers concurrently.
func (s *Scheduler) Run(ctx context.Context) {
	done := make(chan struct{}, 2)
	go func() {
		s.runListLoop(ctx)
		done <- struct{}{}
	}()
	go func() {
		s.runFailedLoop(ctx)
		done <- struct{}{}
	}()
	<-done
	<-done
}

func (s *Scheduler) runListLoop(ctx context.Context) {
	ticker := time.NewTicker(ListInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.list.Run(ctx); err != nil {
				report(s.reporter, "redis", err)
			}
		}
	}
}

func (s *Scheduler) runFailedLoop(ctx context.Context) {
	ticker := time.NewTicker(FailedInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.failed.Drain(ctx, s.reporter)
		}
	}
}
