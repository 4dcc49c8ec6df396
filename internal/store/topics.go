package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/pixelforum/internal/domain"
)

// GetTopics fetches topics by id. The perm fields (ReplyCount,
// LastReplyTime) are computed from posts, not stored on the row, so
// they're filled in separately by the caller when needed outside the
// cache layer (the cache layer overlays them from ":set_perm" instead).
func (p *Pool) GetTopics(ctx context.Context, ids []uint32) ([]domain.Topic, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph, args := idPlaceholders(ids)
	rows, err := p.DB.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, user_id, category_id, title, body, thumbnail, is_locked, is_visible, created_at, updated_at
		 FROM topics WHERE id IN (%s)`, ph), args...)
	if err != nil {
		return nil, fmt.Errorf("store: get topics: %w", err)
	}
	defer rows.Close()

	var out []domain.Topic
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Title, &t.Body, &t.Thumbnail,
			&t.IsLocked, &t.IsVisible, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan topic: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InsertTopic creates a new topic.
func (p *Pool) InsertTopic(ctx context.Context, t *domain.Topic) error {
	return p.stmt(stmtInsertTopic).QueryRowContext(ctx,
		t.UserID, t.CategoryID, t.Title, t.Body, t.Thumbnail, t.IsLocked, t.IsVisible,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// UpdateTopicFields applies a partial update built from patch and
// returns the resulting row. userID, when non-nil, scopes the update
// to a topic owned by that user (an ordinary author's edit); nil
// means an unscoped admin update.
func (p *Pool) UpdateTopicFields(ctx context.Context, id uint32, userID *uint32, patch TopicPatch) (domain.Topic, error) {
	var b patchBuilder
	b.setIfString("title", patch.Title)
	b.setIfString("body", patch.Body)
	b.setIfString("thumbnail", patch.Thumbnail)
	b.setIfBool("is_locked", patch.IsLocked)
	b.setIfBool("is_visible", patch.IsVisible)

	setClause, idPH, args, err := b.build(id)
	if err != nil {
		return domain.Topic{}, err
	}
	setClause += ", updated_at = NOW()"

	where := fmt.Sprintf("id = %s", idPH)
	if userID != nil {
		args = append(args, *userID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	var t domain.Topic
	query := fmt.Sprintf(`UPDATE topics SET %s WHERE %s
		RETURNING id, user_id, category_id, title, body, thumbnail, is_locked, is_visible, created_at, updated_at`,
		setClause, where)
	row := p.DB.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Title, &t.Body, &t.Thumbnail,
		&t.IsLocked, &t.IsVisible, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Topic{}, ErrNotFound
		}
		return domain.Topic{}, fmt.Errorf("store: update topic: %w", err)
	}
	return t, nil
}

// TopicReplyCount counts posts belonging to a topic, used to compute
// the perm field when rebuilding cache from the primary store.
func (p *Pool) TopicReplyCount(ctx context.Context, topicID uint32) (uint32, error) {
	var n uint32
	err := p.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE topic_id = $1`, topicID).Scan(&n)
	return n, err
}

// MaxTopicID is used by internal/idalloc to bootstrap the allocator.
func (p *Pool) MaxTopicID(ctx context.Context) (uint32, error) {
	var id uint32
	err := p.stmt(stmtMaxTopicID).QueryRowContext(ctx).Scan(&id)
	return id, err
}
