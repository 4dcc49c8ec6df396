package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/pixelforum/internal/cache"
	"github.com/ignite/pixelforum/internal/pkg/distlock"
)

// activityWindow bounds how far back "new" activity counts for the
// topic_count_new/post_count_new rebuild — the original's "yesterday"
// cutoff.
const activityWindow = 24 * time.Hour

// listLockTTL bounds how long one instance holds the list-rebuild
// lock — comfortably above how long a rebuild pass should ever take,
// so a crashed holder doesn't stall the next tick past ListInterval.
const listLockTTL = 4 * time.Second

// ListUpdater rebuilds each category's "list_pop" popularity ordering
// and its topic_count_new/post_count_new counters from the last
// activityWindow of traffic. Grounded on handle_list_update,
// update_list and update_post_count in
// original_source/src/handler/cache_update.rs.
type ListUpdater struct {
	store *cache.Store
}

// NewListUpdater builds a ListUpdater over the given cache store.
func NewListUpdater(store *cache.Store) *ListUpdater {
	return &ListUpdater{store: store}
}

// Run rebuilds the list for every known category plus the
// cross-category "all" list. A failure rebuilding one category does
// not prevent the others from being attempted — the ticker loop calling
// Run simply tries again next period.
//
// The rebuild is guarded by a short-TTL distributed lock (§4.7): if
// more than one process instance runs this scheduler, only the
// instance that wins the lock does the ZREVRANGEBYSCORE/RPUSH rewrite
// for this tick. Losing the lock is not an error — it just means
// another instance is handling this tick, so Run returns nil and
// tries again next period.
func (u *ListUpdater) Run(ctx context.Context) error {
	lock := distlock.NewRedisLock(u.store.Client(), "reconcile:list_update", listLockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: acquire list-update lock: %w", err)
	}
	if !acquired {
		return nil
	}
	defer lock.Release(ctx)

	categories, err := u.store.GetCategoriesAll(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: list categories: %w", err)
	}

	cutoff := time.Now().Add(-activityWindow).UnixMilli()

	var firstErr error
	for _, c := range categories {
		cid := c.ID
		if err := u.updateList(ctx, &cid, cutoff); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := u.updatePostCount(ctx, c.ID, cutoff); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := u.updateList(ctx, nil, cutoff); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type scoredID struct {
	id    uint32
	score int64
}

// updateList rebuilds one category's "list_pop" (cid == nil rebuilds
// "category:all:list_pop") ordered by (reply_count DESC, last_activity
// DESC). This deliberately diverges from the original Rust comparator,
// which returns Ordering::Greater for any unequal reply count and
// therefore never establishes a valid total order — see DESIGN.md.
func (u *ListUpdater) updateList(ctx context.Context, cid *uint32, cutoffMillis int64) error {
	listKey, timeKey, replyKey, setKey := listKeys(cid)
	rdb := u.store.Client()

	timeEntries, err := rdb.ZRevRangeByScoreWithScores(ctx, timeKey, &redis.ZRangeBy{
		Min: fmt.Sprint(cutoffMillis),
		Max: "+inf",
	}).Result()
	if err != nil {
		return fmt.Errorf("reconcile: read %s: %w", timeKey, err)
	}
	replyEntries, err := rdb.ZRevRangeWithScores(ctx, replyKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("reconcile: read %s: %w", replyKey, err)
	}

	activity := make(map[uint32]int64, len(timeEntries))
	for _, z := range timeEntries {
		id, ok := memberToID(z.Member)
		if !ok {
			continue
		}
		activity[id] = int64(z.Score)
	}

	var ranked []scoredID
	for _, z := range replyEntries {
		id, ok := memberToID(z.Member)
		if !ok {
			continue
		}
		if _, present := activity[id]; !present {
			continue
		}
		ranked = append(ranked, scoredID{id: id, score: int64(z.Score)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return activity[ranked[i].id] > activity[ranked[j].id]
	})

	pipe := rdb.TxPipeline()
	wrote := false
	if len(activity) > 0 && setKey != "" {
		pipe.HSet(ctx, setKey, "topic_count_new", len(activity))
		wrote = true
	}
	if len(ranked) > 0 {
		ids := make([]interface{}, len(ranked))
		for i, r := range ranked {
			ids[i] = r.id
		}
		pipe.Del(ctx, listKey)
		pipe.RPush(ctx, listKey, ids...)
		wrote = true
	}
	if !wrote {
		return nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reconcile: rebuild %s: %w", listKey, err)
	}
	return nil
}

// updatePostCount recomputes post_count_new for one category from the
// number of posts created within activityWindow.
func (u *ListUpdater) updatePostCount(ctx context.Context, categoryID uint32, cutoffMillis int64) error {
	timeKey := fmt.Sprintf("category:%d:posts_time", categoryID)
	setKey := fmt.Sprintf("category:%d:set", categoryID)
	rdb := u.store.Client()

	count, err := rdb.ZCount(ctx, timeKey, fmt.Sprint(cutoffMillis), "+inf").Result()
	if err != nil {
		return fmt.Errorf("reconcile: count %s: %w", timeKey, err)
	}
	if count == 0 {
		return nil
	}
	if err := rdb.HSet(ctx, setKey, "post_count_new", count).Err(); err != nil {
		return fmt.Errorf("reconcile: set post_count_new on %s: %w", setKey, err)
	}
	return nil
}

func listKeys(cid *uint32) (listKey, timeKey, replyKey, setKey string) {
	if cid == nil {
		return "category:all:list_pop", "category:all:topics_time", "category:all:topics_reply", ""
	}
	id := *cid
	return fmt.Sprintf("category:%d:list_pop", id),
		fmt.Sprintf("category:%d:topics_time", id),
		fmt.Sprintf("category:%d:topics_reply", id),
		fmt.Sprintf("category:%d:set", id)
}

func memberToID(member interface{}) (uint32, bool) {
	var id uint32
	if _, err := fmt.Sscanf(fmt.Sprint(member), "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}
