package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/pixelforum/internal/domain"
)

// GetPosts fetches posts by id.
func (p *Pool) GetPosts(ctx context.Context, ids []uint32) ([]domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph, args := idPlaceholders(ids)
	rows, err := p.DB.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, user_id, topic_id, category_id, COALESCE(post_id,0), post_content, is_locked, is_visible, created_at, updated_at
		 FROM posts WHERE id IN (%s)`, ph), args...)
	if err != nil {
		return nil, fmt.Errorf("store: get posts: %w", err)
	}
	defer rows.Close()

	var out []domain.Post
	for rows.Next() {
		var po domain.Post
		if err := rows.Scan(&po.ID, &po.UserID, &po.TopicID, &po.CategoryID, &po.PostID,
			&po.Content, &po.IsLocked, &po.IsVisible, &po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan post: %w", err)
		}
		out = append(out, po)
	}
	return out, rows.Err()
}

// InsertPost creates a new post. PostID of 0 is stored as NULL,
// meaning "replies the topic directly" rather than another post.
func (p *Pool) InsertPost(ctx context.Context, po *domain.Post) error {
	var postID sql.NullInt64
	if po.PostID != 0 {
		postID = sql.NullInt64{Int64: int64(po.PostID), Valid: true}
	}
	return p.stmt(stmtInsertPost).QueryRowContext(ctx,
		po.UserID, po.TopicID, po.CategoryID, postID, po.Content, po.IsLocked, po.IsVisible,
	).Scan(&po.ID, &po.CreatedAt, &po.UpdatedAt)
}

// UpdatePostFields applies a partial update built from patch and
// returns the resulting row. userID, when non-nil, scopes the update
// to a post authored by that user.
func (p *Pool) UpdatePostFields(ctx context.Context, id uint32, userID *uint32, patch PostPatch) (domain.Post, error) {
	var b patchBuilder
	b.setIfString("post_content", patch.Content)
	b.setIfBool("is_locked", patch.IsLocked)
	b.setIfBool("is_visible", patch.IsVisible)

	setClause, idPH, args, err := b.build(id)
	if err != nil {
		return domain.Post{}, err
	}
	setClause += ", updated_at = NOW()"

	where := fmt.Sprintf("id = %s", idPH)
	if userID != nil {
		args = append(args, *userID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	var po domain.Post
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE %s
		RETURNING id, user_id, topic_id, category_id, COALESCE(post_id,0), post_content, is_locked, is_visible, created_at, updated_at`,
		setClause, where)
	row := p.DB.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&po.ID, &po.UserID, &po.TopicID, &po.CategoryID, &po.PostID,
		&po.Content, &po.IsLocked, &po.IsVisible, &po.CreatedAt, &po.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Post{}, ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("store: update post: %w", err)
	}
	return po, nil
}

// PostReplyCount counts posts replying to the given post, used to
// compute the perm field when rebuilding cache from the primary store.
func (p *Pool) PostReplyCount(ctx context.Context, postID uint32) (uint32, error) {
	var n uint32
	err := p.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE post_id = $1`, postID).Scan(&n)
	return n, err
}

// MaxPostID is used by internal/idalloc to bootstrap the allocator.
func (p *Pool) MaxPostID(ctx context.Context) (uint32, error) {
	var id uint32
	err := p.stmt(stmtMaxPostID).QueryRowContext(ctx).Scan(&id)
	return id, err
}
