// Package idalloc is a process-local monotonic id allocator. It is
// seeded once from the primary store's current max(id) per table and
// is not persisted: a restart re-reads the watermark rather than
// resuming from a saved counter, so a process crash can never hand
// out an id below what's already durable.
package idalloc

import (
	"context"
	"fmt"
	"sync"
)

// idSource supplies the bootstrap watermark for one entity kind.
type idSource func(ctx context.Context) (uint32, error)

// Allocator hands out monotonically increasing ids for users, topics,
// posts, and categories, each behind its own counter but sharing one
// mutex (allocation is rare enough relative to reads that a single
// lock is simpler than four, and the original it's grounded on uses
// the same single-lock shape).
type Allocator struct {
	mu       sync.Mutex
	lastUID  uint32
	lastTID  uint32
	lastPID  uint32
	lastCID  uint32
}

// New bootstraps every counter from the store via the given sources.
func New(ctx context.Context, users, topics, posts, categories idSource) (*Allocator, error) {
	a := &Allocator{}
	var err error
	if a.lastUID, err = users(ctx); err != nil {
		return nil, fmt.Errorf("idalloc: bootstrap users: %w", err)
	}
	if a.lastTID, err = topics(ctx); err != nil {
		return nil, fmt.Errorf("idalloc: bootstrap topics: %w", err)
	}
	if a.lastPID, err = posts(ctx); err != nil {
		return nil, fmt.Errorf("idalloc: bootstrap posts: %w", err)
	}
	if a.lastCID, err = categories(ctx); err != nil {
		return nil, fmt.Errorf("idalloc: bootstrap categories: %w", err)
	}
	return a, nil
}

// NextUserID returns the next unused user id.
func (a *Allocator) NextUserID() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastUID++
	return a.lastUID
}

// NextTopicID returns the next unused topic id.
func (a *Allocator) NextTopicID() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastTID++
	return a.lastTID
}

// NextPostID returns the next unused post id.
func (a *Allocator) NextPostID() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastPID++
	return a.lastPID
}

// NextCategoryID returns the next unused category id.
func (a *Allocator) NextCategoryID() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastCID++
	return a.lastCID
}
