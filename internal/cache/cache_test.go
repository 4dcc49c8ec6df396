package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client), mr
}

func TestAddTopicThenGetTopics(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	topic := domain.Topic{
		ID:         1,
		UserID:     42,
		CategoryID: 7,
		Title:      "hello",
		Body:       "world",
		IsVisible:  true,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.AddTopic(ctx, topic); err != nil {
		t.Fatalf("AddTopic: %v", err)
	}

	got, err := s.GetTopics(ctx, []uint32{1})
	if err != nil {
		t.Fatalf("GetTopics: %v", err)
	}
	if len(got) != 1 || got[0].Title != "hello" {
		t.Fatalf("unexpected topics: %+v", got)
	}
}

func TestGetTopicsReportsMisses(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetTopics(ctx, []uint32{999})
	var missErr *apierr.IdsFromCache
	if err == nil {
		t.Fatal("expected a cache-miss error")
	}
	if !asIdsFromCache(err, &missErr) {
		t.Fatalf("expected *apierr.IdsFromCache, got %T: %v", err, err)
	}
	if len(missErr.IDs) != 1 || missErr.IDs[0] != 999 {
		t.Fatalf("unexpected missing ids: %v", missErr.IDs)
	}
}

func TestAddPostUpdatesTopicPermFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	topic := domain.Topic{ID: 1, CategoryID: 7, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.AddTopic(ctx, topic); err != nil {
		t.Fatalf("AddTopic: %v", err)
	}

	post := domain.Post{ID: 100, TopicID: 1, CategoryID: 7, Content: "reply", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.AddPost(ctx, post); err != nil {
		t.Fatalf("AddPost: %v", err)
	}

	got, err := s.GetTopics(ctx, []uint32{1})
	if err != nil {
		t.Fatalf("GetTopics: %v", err)
	}
	if got[0].ReplyCount != 1 {
		t.Fatalf("expected reply_count 1, got %d", got[0].ReplyCount)
	}
}

func TestAddPostToPostIncrementsParentReplyCount(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	topic := domain.Topic{ID: 1, CategoryID: 7, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	_ = s.AddTopic(ctx, topic)

	parent := domain.Post{ID: 100, TopicID: 1, CategoryID: 7, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	_ = s.AddPost(ctx, parent)

	child := domain.Post{ID: 101, TopicID: 1, CategoryID: 7, PostID: 100, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.AddPost(ctx, child); err != nil {
		t.Fatalf("AddPost child: %v", err)
	}

	got, err := s.GetPosts(ctx, []uint32{100})
	if err != nil {
		t.Fatalf("GetPosts: %v", err)
	}
	if got[0].ReplyCount != 1 {
		t.Fatalf("expected parent reply_count 1, got %d", got[0].ReplyCount)
	}
}

func TestGetByZRangeRanksPostsByReplyCountThenAscendingID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	topic := domain.Topic{ID: 1, CategoryID: 7, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	_ = s.AddTopic(ctx, topic)

	for _, id := range []uint32{100, 101, 102} {
		p := domain.Post{ID: id, TopicID: 1, CategoryID: 7, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := s.AddPost(ctx, p); err != nil {
			t.Fatalf("AddPost %d: %v", id, err)
		}
	}
	// Give post 101 one reply, so it outranks the still-tied 100/102.
	reply := domain.Post{ID: 200, TopicID: 1, CategoryID: 7, PostID: 101, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.AddPost(ctx, reply); err != nil {
		t.Fatalf("AddPost reply: %v", err)
	}

	ids, err := s.GetByZRange(ctx, "topic:1:posts_reply", 1, true, true)
	if err != nil {
		t.Fatalf("GetByZRange: %v", err)
	}
	want := []uint32{101, 100, 102, 200}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestAddActivationMailDeduplicates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id1, err := s.AddActivationMail(ctx, 5, `{"to":"a@b.com"}`)
	if err != nil {
		t.Fatalf("AddActivationMail: %v", err)
	}
	if id1 == "" {
		t.Fatal("expected a non-empty uuid")
	}

	id2, err := s.AddActivationMail(ctx, 5, `{"to":"a@b.com"}`)
	if err != nil {
		t.Fatalf("AddActivationMail (dup): %v", err)
	}
	if id2 != "" {
		t.Fatal("expected a duplicate enqueue to be dropped")
	}
}

func TestRemoveCategoryTearsDownTopicsAndPosts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_ = s.AddCategory(ctx, domain.Category{ID: 9, Name: "general"})
	_ = s.AddTopic(ctx, domain.Topic{ID: 1, CategoryID: 9, CreatedAt: time.Now(), UpdatedAt: time.Now()})
	_ = s.AddPost(ctx, domain.Post{ID: 100, TopicID: 1, CategoryID: 9, CreatedAt: time.Now(), UpdatedAt: time.Now()})

	if err := s.RemoveCategory(ctx, 9); err != nil {
		t.Fatalf("RemoveCategory: %v", err)
	}

	_, err := s.GetTopics(ctx, []uint32{1})
	var missErr *apierr.IdsFromCache
	if !asIdsFromCache(err, &missErr) {
		t.Fatalf("expected topic 1 to be gone after category removal, got err=%v", err)
	}
}

func TestGetCategoriesAllReportsNoCacheWhenMetaListEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetCategoriesAll(ctx)
	if !errors.Is(err, apierr.ErrNoCache) {
		t.Fatalf("expected apierr.ErrNoCache, got %v", err)
	}
}

func TestGetCategoriesAllReturnsRegisteredCategories(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.AddCategory(ctx, domain.Category{ID: 1, Name: "general"}); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if err := s.AddCategory(ctx, domain.Category{ID: 2, Name: "off-topic"}); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	got, err := s.GetCategoriesAll(ctx)
	if err != nil {
		t.Fatalf("GetCategoriesAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d: %+v", len(got), got)
	}
}

func asIdsFromCache(err error, target **apierr.IdsFromCache) bool {
	if e, ok := err.(*apierr.IdsFromCache); ok {
		*target = e
		return true
	}
	return false
}
