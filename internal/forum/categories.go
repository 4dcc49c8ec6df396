package forum

import (
	"context"
	"errors"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/logger"
	"github.com/ignite/pixelforum/internal/reconcile"
)

// NewCategoryRequest is the payload for creating a category
// (POST /admin/category).
type NewCategoryRequest struct {
	Name      string
	Thumbnail string
}

// CreateCategory allocates a category id, persists it, and registers
// it in the cache's category_id:meta list.
func (s *Service) CreateCategory(ctx context.Context, req NewCategoryRequest) (domain.Category, error) {
	c := domain.Category{ID: s.ids.NextCategoryID(), Name: req.Name, Thumbnail: req.Thumbnail}
	if err := s.store.InsertCategory(ctx, &c); err != nil {
		return domain.Category{}, err
	}
	if err := s.cache.AddCategory(ctx, c); err != nil {
		s.pushFailed(reconcile.FailedCategory, c.ID, err)
	}
	return c, nil
}

// ListCategories returns every category, falling back to the store on
// a wholesale cache miss (the "category_id:meta" list being empty
// means the cache was never primed, not that zero categories exist).
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.cache.GetCategoriesAll(ctx)
	if err == nil {
		return categories, nil
	}
	if !errors.Is(err, apierr.ErrNoCache) {
		return nil, err
	}

	fromStore, err := s.store.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	repairAsync(func(ctx context.Context) error {
		for _, c := range fromStore {
			if err := s.cache.AddCategory(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	return fromStore, nil
}

// DeleteCategory removes the category row and cascades the cache
// teardown across its topics and posts in one call
// (internal/cache.RemoveCategory). Per spec.md §5, a cache-side
// failure here is not retried — of the keys left behind, only topic
// and post ":set" hashes expire via HASH_LIFE — so unlike the other
// write paths this never enqueues a reconciliation message.
func (s *Service) DeleteCategory(ctx context.Context, id uint32) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	if err := s.cache.RemoveCategory(ctx, id); err != nil {
		logger.Warn("forum: category cache teardown failed, stragglers will expire via HASH_LIFE", "id", id, "error", err.Error())
	}
	return nil
}
