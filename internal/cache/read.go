package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/domain"
)

// GetTopics reads topics by id, overlaying each with its set_perm
// fields. Ids whose ":set" hash is empty or missing are reported via
// a returned *apierr.IdsFromCache — callers fetch those from
// internal/store and fire-and-forget a cache repair; this method
// never blocks on the primary store itself.
func (s *Store) GetTopics(ctx context.Context, ids []uint32) ([]domain.Topic, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pipe := s.rdb.Pipeline()
	setCmds := make([]*redis.MapStringStringCmd, len(ids))
	permCmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		setCmds[i] = pipe.HGetAll(ctx, fmt.Sprintf("topic:%d:set", id))
		permCmds[i] = pipe.HGetAll(ctx, fmt.Sprintf("topic:%d:set_perm", id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("cache: get topics: %w", err)
	}

	var out []domain.Topic
	var missing []uint32
	for i, id := range ids {
		fields := setCmds[i].Val()
		if len(fields) == 0 {
			missing = append(missing, id)
			continue
		}
		t, err := topicFromFields(fields)
		if err != nil {
			missing = append(missing, id)
			continue
		}
		out = append(out, attachTopicPerm(t, permCmds[i].Val()))
	}
	if len(missing) > 0 {
		return out, &apierr.IdsFromCache{IDs: missing}
	}
	return out, nil
}

// GetPosts reads posts by id with the same miss/fallback contract as GetTopics.
func (s *Store) GetPosts(ctx context.Context, ids []uint32) ([]domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pipe := s.rdb.Pipeline()
	setCmds := make([]*redis.MapStringStringCmd, len(ids))
	permCmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		setCmds[i] = pipe.HGetAll(ctx, fmt.Sprintf("post:%d:set", id))
		permCmds[i] = pipe.HGetAll(ctx, fmt.Sprintf("post:%d:set_perm", id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("cache: get posts: %w", err)
	}

	var out []domain.Post
	var missing []uint32
	for i, id := range ids {
		fields := setCmds[i].Val()
		if len(fields) == 0 {
			missing = append(missing, id)
			continue
		}
		p, err := postFromFields(fields)
		if err != nil {
			missing = append(missing, id)
			continue
		}
		out = append(out, attachPostPerm(p, permCmds[i].Val()))
	}
	if len(missing) > 0 {
		return out, &apierr.IdsFromCache{IDs: missing}
	}
	return out, nil
}

// GetUsers reads users by id with the same miss/fallback contract as GetTopics.
func (s *Store) GetUsers(ctx context.Context, ids []uint32) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pipe := s.rdb.Pipeline()
	setCmds := make([]*redis.MapStringStringCmd, len(ids))
	permCmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		setCmds[i] = pipe.HGetAll(ctx, fmt.Sprintf("user:%d:set", id))
		permCmds[i] = pipe.HGetAll(ctx, fmt.Sprintf("user:%d:set_perm", id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("cache: get users: %w", err)
	}

	var out []domain.User
	var missing []uint32
	for i, id := range ids {
		fields := setCmds[i].Val()
		if len(fields) == 0 {
			missing = append(missing, id)
			continue
		}
		u, err := userFromFields(fields)
		if err != nil {
			missing = append(missing, id)
			continue
		}
		out = append(out, attachUserPerm(u, permCmds[i].Val()))
	}
	if len(missing) > 0 {
		return out, &apierr.IdsFromCache{IDs: missing}
	}
	return out, nil
}

// GetCategoriesAll reads every category registered in
// "category_id:meta", used by the reconciliation scheduler and the
// category-listing endpoint. An empty meta list means the cache has
// never been primed rather than "zero categories exist", so this
// reports apierr.ErrNoCache (not a per-id IdsFromCache, since there are
// no ids to target a repair at) and callers must reload from
// internal/store wholesale.
func (s *Store) GetCategoriesAll(ctx context.Context) ([]domain.Category, error) {
	idStrs, err := s.rdb.LRange(ctx, "category_id:meta", 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: list category ids: %w", err)
	}
	if len(idStrs) == 0 {
		return nil, apierr.ErrNoCache
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(idStrs))
	for i, idStr := range idStrs {
		cmds[i] = pipe.HGetAll(ctx, fmt.Sprintf("category:%s:set", idStr))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("cache: get categories: %w", err)
	}

	var out []domain.Category
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		c, err := categoryFromFields(fields)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// GetByList pages through a plain id list (e.g.
// "category:<cid>:list_pop", the scheduler-rebuilt popularity order)
// and returns the matching topic ids for that page.
func (s *Store) GetByList(ctx context.Context, listKey string, page int) ([]uint32, error) {
	start := int64((page - 1) * Limit)
	end := start + Limit - 1
	idStrs, err := s.rdb.LRange(ctx, listKey, start, end).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: get by list: %w", err)
	}
	return parseUint32Slice(idStrs), nil
}

// GetByZRange pages through a sorted set (e.g. "category:<cid>:topics_time"
// or, ranked by reply count, "topic:<tid>:posts_reply") and returns the
// ids for that page. reverse selects descending- vs ascending-score
// order. reverseLex undoes the LexBase-id member encoding that
// AddPost uses for posts_reply so equal-score ties still come back in
// ascending id order under a descending scan — see LexBase.
func (s *Store) GetByZRange(ctx context.Context, zsetKey string, page int, reverse, reverseLex bool) ([]uint32, error) {
	start := int64((page - 1) * Limit)
	end := start + Limit - 1

	var idStrs []string
	var err error
	if reverse {
		idStrs, err = s.rdb.ZRevRange(ctx, zsetKey, start, end).Result()
	} else {
		idStrs, err = s.rdb.ZRange(ctx, zsetKey, start, end).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get by zrange: %w", err)
	}

	ids := parseUint32Slice(idStrs)
	if reverseLex {
		for i, id := range ids {
			ids[i] = LexBase - id
		}
	}
	return ids, nil
}

func parseUint32Slice(strs []string) []uint32 {
	out := make([]uint32, 0, len(strs))
	for _, s := range strs {
		var id uint32
		if _, err := fmt.Sscanf(s, "%d", &id); err == nil {
			out = append(out, id)
		}
	}
	return out
}
