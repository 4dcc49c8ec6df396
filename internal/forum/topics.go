package forum

import (
	"context"
	"errors"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/cache"
	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/reconcile"
	"github.com/ignite/pixelforum/internal/store"
)

// NewTopicRequest is the payload for creating a topic (POST /topic).
type NewTopicRequest struct {
	UserID     uint32
	CategoryID uint32
	Title      string
	Body       string
	Thumbnail  string
}

// CreateTopic allocates a topic id, persists the topic, bumps the
// owning category's durable topic_count, and writes through to the
// cache. Grounded on add_topic in
// original_source/src/handler/topic_async.rs.
func (s *Service) CreateTopic(ctx context.Context, req NewTopicRequest) (domain.Topic, error) {
	t := domain.Topic{
		ID:         s.ids.NextTopicID(),
		UserID:     req.UserID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Body:       req.Body,
		Thumbnail:  req.Thumbnail,
		IsVisible:  true,
	}
	// The allocator hands out the id, but the insert does not send it
	// (id is not one of stmtInsertTopic's columns): Postgres assigns
	// id, created_at and updated_at, and the RETURNING clause overwrites
	// t.ID with the id Postgres chose.
	if err := s.store.InsertTopic(ctx, &t); err != nil {
		return domain.Topic{}, err
	}
	if err := s.store.IncrementTopicCount(ctx, t.CategoryID, 1); err != nil {
		return domain.Topic{}, err
	}
	if err := s.cache.AddTopic(ctx, t); err != nil {
		s.pushFailed(reconcile.FailedTopic, t.ID, err)
	}
	return t, nil
}

// GetTopic returns a topic together with one page of its posts; the
// topic itself is fetched and returned on every page, not only on
// page 1. byReplies switches the
// post ordering from creation time to reply count (ties broken so the
// earlier post of two with an equal reply count sorts first).
func (s *Service) GetTopic(ctx context.Context, id uint32, page int, byReplies bool) (domain.Topic, []domain.Post, error) {
	t, err := s.getTopicByID(ctx, id)
	if err != nil {
		return domain.Topic{}, nil, err
	}

	var pids []uint32
	if byReplies {
		pids, err = s.cache.GetByZRange(ctx, topicPostsReplyKey(id), page, true, true)
	} else {
		pids, err = s.cache.GetByZRange(ctx, topicPostsTimeKey(id), page, true, false)
	}
	if err != nil {
		return domain.Topic{}, nil, err
	}
	if len(pids) == 0 {
		return t, nil, nil
	}

	posts, err := s.getPostsByIDs(ctx, pids)
	if err != nil {
		return domain.Topic{}, nil, err
	}
	return t, posts, nil
}

func (s *Service) getTopicByID(ctx context.Context, id uint32) (domain.Topic, error) {
	topics, err := s.cache.GetTopics(ctx, []uint32{id})
	var idsErr *apierr.IdsFromCache
	if err == nil {
		if len(topics) == 0 {
			return domain.Topic{}, apierr.ErrNotFound
		}
		return topics[0], nil
	}
	if !errors.As(err, &idsErr) {
		return domain.Topic{}, err
	}

	fromStore, err := s.store.GetTopics(ctx, idsErr.IDs)
	if err != nil {
		return domain.Topic{}, err
	}
	if len(fromStore) == 0 {
		return domain.Topic{}, apierr.ErrNotFound
	}
	t := fromStore[0]
	repairAsync(func(ctx context.Context) error { return s.cache.UpdateTopics(ctx, []domain.Topic{t}) })
	return t, nil
}

// UpdateTopic applies a partial update; userID, when non-nil, scopes
// the update to the topic's author (the forum's author-edit path as
// opposed to an admin override).
func (s *Service) UpdateTopic(ctx context.Context, id uint32, userID *uint32, patch store.TopicPatch) (domain.Topic, error) {
	t, err := s.store.UpdateTopicFields(ctx, id, userID, patch)
	if err != nil {
		return domain.Topic{}, err
	}
	if err := s.cache.UpdateTopics(ctx, []domain.Topic{t}); err != nil {
		s.pushFailed(reconcile.FailedTopicUpdate, t.ID, err)
	}
	return t, nil
}

// TopicsPage returns one page of topic ids ordered by recency for a
// category (or every category when categoryID is 0), resolving ids to
// entities through the same miss/fallback contract as GetTopic.
func (s *Service) TopicsPage(ctx context.Context, categoryID uint32, page int) ([]domain.Topic, error) {
	key := "category:all:topics_time"
	if categoryID != 0 {
		key = topicsByTimeKey(categoryID)
	}
	tids, err := s.cache.GetByZRange(ctx, key, page, true, false)
	if err != nil {
		return nil, err
	}
	return s.getTopicsByIDs(ctx, tids)
}

func (s *Service) getTopicsByIDs(ctx context.Context, ids []uint32) ([]domain.Topic, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	topics, err := s.cache.GetTopics(ctx, ids)
	var idsErr *apierr.IdsFromCache
	if err == nil {
		return topics, nil
	}
	if !errors.As(err, &idsErr) {
		return nil, err
	}

	fromStore, err := s.store.GetTopics(ctx, idsErr.IDs)
	if err != nil {
		return nil, err
	}
	repairAsync(func(ctx context.Context) error { return s.cache.UpdateTopics(ctx, fromStore) })
	return append(topics, fromStore...), nil
}

func topicsByTimeKey(categoryID uint32) string {
	return "category:" + uint32ToString(categoryID) + ":topics_time"
}

func topicPostsTimeKey(topicID uint32) string {
	return "topic:" + uint32ToString(topicID) + ":posts_time_created"
}

func topicPostsReplyKey(topicID uint32) string {
	return "topic:" + uint32ToString(topicID) + ":posts_reply"
}
