package store

import (
	"context"
	"fmt"

	"github.com/ignite/pixelforum/internal/domain"
)

// GetCategories fetches categories by id.
func (p *Pool) GetCategories(ctx context.Context, ids []uint32) ([]domain.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph, args := idPlaceholders(ids)
	rows, err := p.DB.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, name, thumbnail, topic_count, post_count FROM categories WHERE id IN (%s)`, ph), args...)
	if err != nil {
		return nil, fmt.Errorf("store: get categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Thumbnail, &c.TopicCount, &c.PostCount); err != nil {
			return nil, fmt.Errorf("store: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetAllCategories returns every category, used by
// internal/forum.ListCategories when the cache's category list is empty.
func (p *Pool) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := p.stmt(stmtCategoriesAll).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: get all categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Thumbnail, &c.TopicCount, &c.PostCount); err != nil {
			return nil, fmt.Errorf("store: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertCategory creates a new category.
func (p *Pool) InsertCategory(ctx context.Context, c *domain.Category) error {
	return p.stmt(stmtInsertCategory).QueryRowContext(ctx, c.Name, c.Thumbnail).Scan(&c.ID)
}

// DeleteCategory removes a category row. The caller is responsible
// for tearing down its cached topics/posts (internal/cache.RemoveCategory).
func (p *Pool) DeleteCategory(ctx context.Context, id uint32) error {
	res, err := p.stmt(stmtDeleteCategory).ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("store: delete category: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MaxCategoryID is used by internal/idalloc to bootstrap the allocator.
func (p *Pool) MaxCategoryID(ctx context.Context) (uint32, error) {
	var id uint32
	err := p.stmt(stmtMaxCategoryID).QueryRowContext(ctx).Scan(&id)
	return id, err
}

// IncrementTopicCount bumps a category's durable topic_count by delta.
func (p *Pool) IncrementTopicCount(ctx context.Context, categoryID uint32, delta int) error {
	_, err := p.DB.ExecContext(ctx, `UPDATE categories SET topic_count = topic_count + $1 WHERE id = $2`, delta, categoryID)
	return err
}

// IncrementPostCount bumps a category's durable post_count by delta.
func (p *Pool) IncrementPostCount(ctx context.Context, categoryID uint32, delta int) error {
	_, err := p.DB.ExecContext(ctx, `UPDATE categories SET post_count = post_count + $1 WHERE id = $2`, delta, categoryID)
	return err
}
