package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/pixelforum/internal/domain"
)

// AddTopic writes a newly created topic's cache entry and updates
// every denormalized index a topic participates in: the owning
// category's topic_count, and both the per-category and "all"
// topics_time/topics_reply sorted sets. Runs as one atomic pipeline.
func (s *Store) AddTopic(ctx context.Context, t domain.Topic) error {
	key := fmt.Sprintf("topic:%d:set", t.ID)
	catKey := fmt.Sprintf("category:%d:set", t.CategoryID)
	catTopicsTime := fmt.Sprintf("category:%d:topics_time", t.CategoryID)
	catTopicsReply := fmt.Sprintf("category:%d:topics_reply", t.CategoryID)
	millis := t.CreatedAt.UnixMilli()

	fields, err := topicSetFields(t)
	if err != nil {
		return fmt.Errorf("cache: add topic: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, HashLife)
		pipe.HIncrBy(ctx, catKey, "topic_count", 1)
		pipe.ZAdd(ctx, "category:all:topics_time", redis.Z{Score: float64(millis), Member: t.ID})
		pipe.ZAdd(ctx, catTopicsTime, redis.Z{Score: float64(millis), Member: t.ID})
		pipe.ZIncrBy(ctx, "category:all:topics_reply", 0, fmt.Sprint(t.ID))
		pipe.ZIncrBy(ctx, catTopicsReply, 0, fmt.Sprint(t.ID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: add topic: %w", err)
	}
	return nil
}

// AddPost writes a newly created post's cache entry, updates the
// owning category's post_count, the parent topic's reply_count and
// last_reply_time perm fields, the topic's posts_reply/
// posts_time_created sorted sets, and — only when the post replies to
// another post rather than the topic directly — that parent post's
// own perm fields and reply-count entry in posts_reply.
func (s *Store) AddPost(ctx context.Context, p domain.Post) error {
	key := fmt.Sprintf("post:%d:set", p.ID)
	catKey := fmt.Sprintf("category:%d:set", p.CategoryID)
	topicPermKey := fmt.Sprintf("topic:%d:set_perm", p.TopicID)
	topicPostsReply := fmt.Sprintf("topic:%d:posts_reply", p.TopicID)
	topicPostsTimeCreated := fmt.Sprintf("topic:%d:posts_time_created", p.TopicID)
	catTopicsTime := fmt.Sprintf("category:%d:topics_time", p.CategoryID)
	catTopicsReply := fmt.Sprintf("category:%d:topics_reply", p.CategoryID)
	catPostsTime := fmt.Sprintf("category:%d:posts_time", p.CategoryID)

	millis := p.CreatedAt.UnixMilli()
	timeString := formatTime(p.CreatedAt)

	fields, err := postSetFields(p)
	if err != nil {
		return fmt.Errorf("cache: add post: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, HashLife)
		pipe.HIncrBy(ctx, catKey, "post_count", 1)
		pipe.HIncrBy(ctx, topicPermKey, "reply_count", 1)
		pipe.HSet(ctx, topicPermKey, "last_reply_time", timeString)
		// register this post's own reply-count entry at 0; replies to it
		// bump this member's score, so posts_reply ranks posts within a
		// topic by how many direct replies they've drawn. The member is
		// LexBase-p.ID rather than p.ID: within a tied score, ZREVRANGE
		// breaks ties by descending member, and LexBase-id is descending
		// exactly where id is ascending, so equal-reply-count posts still
		// come back in ascending id order.
		pipe.ZAdd(ctx, topicPostsReply, redis.Z{Score: 0, Member: LexBase - p.ID})
		pipe.ZAdd(ctx, topicPostsTimeCreated, redis.Z{Score: float64(millis), Member: p.ID})
		// XX: only touch topics_time entries that already exist —
		// last_reply_time never creates a topic's list/time membership.
		pipe.ZAddXX(ctx, catTopicsTime, redis.Z{Score: float64(millis), Member: p.TopicID})
		pipe.ZAddXX(ctx, "category:all:topics_time", redis.Z{Score: float64(millis), Member: p.TopicID})
		pipe.ZIncrBy(ctx, catTopicsReply, 1, fmt.Sprint(p.TopicID))
		pipe.ZIncrBy(ctx, "category:all:topics_reply", 1, fmt.Sprint(p.TopicID))
		pipe.ZAdd(ctx, catPostsTime, redis.Z{Score: float64(millis), Member: p.ID})

		if p.PostID != 0 {
			parentPermKey := fmt.Sprintf("post:%d:set_perm", p.PostID)
			pipe.HSet(ctx, parentPermKey, "last_reply_time", timeString)
			pipe.HIncrBy(ctx, parentPermKey, "reply_count", 1)
			pipe.ZIncrBy(ctx, topicPostsReply, 1, fmt.Sprint(LexBase-p.PostID))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: add post: %w", err)
	}
	return nil
}

// AddCategory registers a new category in the category_id:meta list
// and writes its cache entry.
func (s *Store) AddCategory(ctx context.Context, c domain.Category) error {
	key := fmt.Sprintf("category:%d:set", c.ID)
	fields, err := categorySetFields(c)
	if err != nil {
		return fmt.Errorf("cache: add category: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, "category_id:meta", c.ID)
		pipe.HSet(ctx, key, fields)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: add category: %w", err)
	}
	return nil
}

// RemoveCategory tears down a category and every topic/post beneath
// it. Three chained pipelines: the category's own keys plus the list
// of its topic ids; each topic's keys plus the list of its post ids;
// each post's keys. A failure at any stage leaves the later stages
// untouched, and the reconciliation scheduler doesn't retry deletes;
// of the keys left behind, only topic and post ":set" hashes expire
// (HASH_LIFE).
func (s *Store) RemoveCategory(ctx context.Context, categoryID uint32) error {
	catKey := fmt.Sprintf("category:%d:set", categoryID)
	topicsReplyKey := fmt.Sprintf("category:%d:topics_reply", categoryID)
	topicsTimeKey := fmt.Sprintf("category:%d:topics_time", categoryID)

	pipe1 := s.rdb.TxPipeline()
	pipe1.LRem(ctx, "category_id:meta", 0, categoryID)
	pipe1.Del(ctx, catKey)
	pipe1.Del(ctx, topicsReplyKey)
	tidsCmd := pipe1.ZRange(ctx, topicsTimeKey, 0, -1)
	pipe1.Del(ctx, topicsTimeKey)
	pipe1.Del(ctx, fmt.Sprintf("category:%d:posts_time", categoryID))
	pipe1.Del(ctx, fmt.Sprintf("category:%d:list_pop", categoryID))
	if _, err := pipe1.Exec(ctx); err != nil {
		return fmt.Errorf("cache: remove category stage 1: %w", err)
	}
	tids := tidsCmd.Val()

	if len(tids) == 0 {
		return nil
	}

	pipe2 := s.rdb.TxPipeline()
	var listCmds []*redis.StringSliceCmd
	for _, tid := range tids {
		pipe2.Del(ctx, fmt.Sprintf("topic:%s:set", tid))
		pipe2.Del(ctx, fmt.Sprintf("topic:%s:set_perm", tid))
		pipe2.Del(ctx, fmt.Sprintf("topic:%s:posts_reply", tid))
		listCmds = append(listCmds, pipe2.ZRange(ctx, fmt.Sprintf("topic:%s:posts_time_created", tid), 0, -1))
		pipe2.Del(ctx, fmt.Sprintf("topic:%s:posts_time_created", tid))
	}
	if _, err := pipe2.Exec(ctx); err != nil {
		return fmt.Errorf("cache: remove category stage 2: %w", err)
	}

	var pids []string
	for _, cmd := range listCmds {
		pids = append(pids, cmd.Val()...)
	}
	if len(pids) == 0 {
		return nil
	}

	pipe3 := s.rdb.TxPipeline()
	for _, pid := range pids {
		pipe3.Del(ctx, fmt.Sprintf("post:%s:set", pid))
		pipe3.Del(ctx, fmt.Sprintf("post:%s:set_perm", pid))
	}
	if _, err := pipe3.Exec(ctx); err != nil {
		return fmt.Errorf("cache: remove category stage 3: %w", err)
	}
	return nil
}

// writeEntity is the generalized form of the original's
// per-type build_hmsets: any entity's already-encoded field map can
// be written through it, with shouldExpire threaded by the caller
// rather than branching on entity kind.
func writeEntity(ctx context.Context, pipe redis.Pipeliner, kind string, id uint32, fields map[string]interface{}, shouldExpire bool) {
	key := fmt.Sprintf("%s:%d:set", kind, id)
	pipe.HSet(ctx, key, fields)
	if shouldExpire {
		pipe.Expire(ctx, key, HashLife)
	}
}

// UpdateUsers rewrites the ":set" hash for each user. Used by the
// reconciliation scheduler's failed-write retry path and by any
// handler that mutates profile fields outside the write-through path.
func (s *Store) UpdateUsers(ctx context.Context, users []domain.User) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, u := range users {
			fields, err := userSetFields(u)
			if err != nil {
				return err
			}
			writeEntity(ctx, pipe, "user", u.ID, fields, false)
		}
		return nil
	})
	return err
}

// UpdateCategories rewrites the ":set" hash for each category.
func (s *Store) UpdateCategories(ctx context.Context, categories []domain.Category) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, c := range categories {
			fields, err := categorySetFields(c)
			if err != nil {
				return err
			}
			writeEntity(ctx, pipe, "category", c.ID, fields, false)
		}
		return nil
	})
	return err
}

// UpdateTopics rewrites the ":set" hash for each topic.
func (s *Store) UpdateTopics(ctx context.Context, topics []domain.Topic) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, t := range topics {
			fields, err := topicSetFields(t)
			if err != nil {
				return err
			}
			writeEntity(ctx, pipe, "topic", t.ID, fields, t.ShouldExpire())
		}
		return nil
	})
	return err
}

// UpdatePosts rewrites the ":set" hash for each post.
func (s *Store) UpdatePosts(ctx context.Context, posts []domain.Post) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range posts {
			fields, err := postSetFields(p)
			if err != nil {
				return err
			}
			writeEntity(ctx, pipe, "post", p.ID, fields, p.ShouldExpire())
		}
		return nil
	})
	return err
}
