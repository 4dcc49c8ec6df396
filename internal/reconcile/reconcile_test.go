package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/pixelforum/internal/cache"
	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/store"
)

func newTestCache(t *testing.T) *cache.Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.New(client)
}

func TestListUpdaterRebuildsPopularityOrder(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	now := time.Now()

	if err := c.AddCategory(ctx, domain.Category{ID: 9, Name: "general"}); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	topicA := topicWithCreatedAt(1, 9, now)
	topicB := topicWithCreatedAt(2, 9, now)
	if err := c.AddTopic(ctx, topicA); err != nil {
		t.Fatalf("AddTopic A: %v", err)
	}
	if err := c.AddTopic(ctx, topicB); err != nil {
		t.Fatalf("AddTopic B: %v", err)
	}
	// two replies to topic A, zero to topic B — A should rank first.
	if err := c.AddPost(ctx, postAt(100, 1, 9, now)); err != nil {
		t.Fatalf("AddPost: %v", err)
	}
	if err := c.AddPost(ctx, postAt(101, 1, 9, now)); err != nil {
		t.Fatalf("AddPost: %v", err)
	}

	updater := NewListUpdater(c)
	if err := updater.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	ids, err := c.GetByList(ctx, "category:9:list_pop", 1)
	if err != nil {
		t.Fatalf("GetByList: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("expected [1 2] ranked by reply count, got %v", ids)
	}
}

func TestFailedWriterRetriesAndStopsOnError(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	pool := &store.Pool{DB: db}

	mock.ExpectQuery("SELECT id, user_id, category_id, title, body, thumbnail, is_locked, is_visible, created_at, updated_at").
		WithArgs(uint32(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "category_id", "title", "body", "thumbnail", "is_locked", "is_visible", "created_at", "updated_at",
		}).AddRow(1, 7, 9, "t", "b", "", false, true, time.Now(), time.Now()))

	mock.ExpectQuery("SELECT id, user_id, category_id, title, body, thumbnail, is_locked, is_visible, created_at, updated_at").
		WithArgs(uint32(2)).
		WillReturnError(context.DeadlineExceeded)

	fw := NewFailedWriter(pool, c)
	fw.Push(FailedMessage{Kind: FailedTopic, ID: 1})
	fw.Push(FailedMessage{Kind: FailedTopic, ID: 2})

	fw.Drain(ctx, nil)

	if got := fw.Len(); got != 1 {
		t.Fatalf("expected the failing message requeued at the front, queue len=%d", got)
	}
	if fw.queue[0].ID != 2 {
		t.Fatalf("expected message id=2 requeued, got %+v", fw.queue[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func topicWithCreatedAt(id, categoryID uint32, t time.Time) domain.Topic {
	return domain.Topic{ID: id, CategoryID: categoryID, CreatedAt: t, UpdatedAt: t}
}

func postAt(id, topicID, categoryID uint32, t time.Time) domain.Post {
	return domain.Post{ID: id, TopicID: topicID, CategoryID: categoryID, CreatedAt: t, UpdatedAt: t}
}
