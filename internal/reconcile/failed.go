package reconcile

import (
	"context"
	"fmt"

	"github.com/ignite/pixelforum/internal/cache"
	"github.com/ignite/pixelforum/internal/store"
)

// FailedKind names which cache write a FailedMessage is retrying.
type FailedKind int

const (
	FailedTopic FailedKind = iota
	FailedPost
	FailedCategory
	FailedUser
	FailedTopicUpdate
	FailedPostUpdate
)

func (k FailedKind) String() string {
	switch k {
	case FailedTopic:
		return "topic_new"
	case FailedPost:
		return "post_new"
	case FailedCategory:
		return "category_new"
	case FailedUser:
		return "user_update"
	case FailedTopicUpdate:
		return "topic_update"
	case FailedPostUpdate:
		return "post_update"
	default:
		return "unknown"
	}
}

// FailedMessage names one entity whose cache write previously failed
// and must be re-derived from internal/store and retried.
type FailedMessage struct {
	Kind FailedKind
	ID   uint32
}

// FailedWriter retries cache writes that the write-through path
// couldn't commit. Grounded on RedisFailedTask in
// original_source/src/handler/cache_update.rs: a plain FIFO queue,
// drained front-to-back, with a failing message pushed back to the
// front and the whole drain abandoned for this tick (not just this
// message) so later messages don't race ahead of an unresolved error.
type FailedWriter struct {
	store *store.Pool
	cache *cache.Store
	queue []FailedMessage
}

// NewFailedWriter builds a FailedWriter over the given store/cache pair.
func NewFailedWriter(st *store.Pool, c *cache.Store) *FailedWriter {
	return &FailedWriter{store: st, cache: c}
}

// Push enqueues a cache write to retry, called by the write-through
// path when an AddTopic/AddPost/etc. call fails.
func (f *FailedWriter) Push(msg FailedMessage) {
	f.queue = append(f.queue, msg)
}

// Len reports how many messages are currently queued, for tests and metrics.
func (f *FailedWriter) Len() int { return len(f.queue) }

// Drain retries messages front-to-back until the queue empties or one
// fails; a failure re-queues that message at the front and stops the
// drain for this tick, matching the original's return-on-first-error
// semantics.
func (f *FailedWriter) Drain(ctx context.Context, reporter Reporter) {
	for len(f.queue) > 0 {
		msg := f.queue[0]
		f.queue = f.queue[1:]

		if err := f.retry(ctx, msg); err != nil {
			f.queue = append([]FailedMessage{msg}, f.queue...)
			report(reporter, "redis", fmt.Errorf("retry %s id=%d: %w", msg.Kind, msg.ID, err))
			return
		}
	}
}

func (f *FailedWriter) retry(ctx context.Context, msg FailedMessage) error {
	switch msg.Kind {
	case FailedTopic:
		topics, err := f.store.GetTopics(ctx, []uint32{msg.ID})
		if err != nil || len(topics) == 0 {
			return fmt.Errorf("load topic: %w", err)
		}
		return f.cache.AddTopic(ctx, topics[0])
	case FailedPost:
		posts, err := f.store.GetPosts(ctx, []uint32{msg.ID})
		if err != nil || len(posts) == 0 {
			return fmt.Errorf("load post: %w", err)
		}
		return f.cache.AddPost(ctx, posts[0])
	case FailedCategory:
		categories, err := f.store.GetCategories(ctx, []uint32{msg.ID})
		if err != nil || len(categories) == 0 {
			return fmt.Errorf("load category: %w", err)
		}
		return f.cache.AddCategory(ctx, categories[0])
	case FailedUser:
		users, err := f.store.GetUsers(ctx, []uint32{msg.ID})
		if err != nil || len(users) == 0 {
			return fmt.Errorf("load user: %w", err)
		}
		return f.cache.UpdateUsers(ctx, users)
	case FailedTopicUpdate:
		topics, err := f.store.GetTopics(ctx, []uint32{msg.ID})
		if err != nil || len(topics) == 0 {
			return fmt.Errorf("load topic: %w", err)
		}
		return f.cache.UpdateTopics(ctx, topics)
	case FailedPostUpdate:
		posts, err := f.store.GetPosts(ctx, []uint32{msg.ID})
		if err != nil || len(posts) == 0 {
			return fmt.Errorf("load post: %w", err)
		}
		return f.cache.UpdatePosts(ctx, posts)
	default:
		return fmt.Errorf("unknown failed-message kind %v", msg.Kind)
	}
}
