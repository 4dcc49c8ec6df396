package forum

import (
	"context"
	"errors"
	"strconv"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/reconcile"
	"github.com/ignite/pixelforum/internal/store"
)

// NewPostRequest is the payload for creating a post (POST /post).
// PostID, when non-zero, names the parent post this one replies to.
type NewPostRequest struct {
	UserID     uint32
	TopicID    uint32
	CategoryID uint32
	PostID     uint32
	Content    string
}

// CreatePost allocates a post id, persists it, bumps the owning
// category's durable post_count, and writes through to the cache
// (which also maintains the parent topic's — and, for a reply-to-
// reply, the parent post's — reply_count/last_reply_time perm
// fields; see internal/cache.AddPost).
func (s *Service) CreatePost(ctx context.Context, req NewPostRequest) (domain.Post, error) {
	p := domain.Post{
		ID:         s.ids.NextPostID(),
		UserID:     req.UserID,
		TopicID:    req.TopicID,
		CategoryID: req.CategoryID,
		PostID:     req.PostID,
		Content:    req.Content,
		IsVisible:  true,
	}
	if err := s.store.InsertPost(ctx, &p); err != nil {
		return domain.Post{}, err
	}
	if err := s.store.IncrementPostCount(ctx, p.CategoryID, 1); err != nil {
		return domain.Post{}, err
	}
	if err := s.cache.AddPost(ctx, p); err != nil {
		s.pushFailed(reconcile.FailedPost, p.ID, err)
	}
	return p, nil
}

// GetPost returns a single post by id, falling back to the store on a
// cache miss and scheduling a best-effort repair.
func (s *Service) GetPost(ctx context.Context, id uint32) (domain.Post, error) {
	posts, err := s.getPostsByIDs(ctx, []uint32{id})
	if err != nil {
		return domain.Post{}, err
	}
	if len(posts) == 0 {
		return domain.Post{}, apierr.ErrNotFound
	}
	return posts[0], nil
}

func (s *Service) getPostsByIDs(ctx context.Context, ids []uint32) ([]domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	posts, err := s.cache.GetPosts(ctx, ids)
	var idsErr *apierr.IdsFromCache
	if err == nil {
		return posts, nil
	}
	if !errors.As(err, &idsErr) {
		return nil, err
	}

	fromStore, err := s.store.GetPosts(ctx, idsErr.IDs)
	if err != nil {
		return nil, err
	}
	repairAsync(func(ctx context.Context) error { return s.cache.UpdatePosts(ctx, fromStore) })
	return append(posts, fromStore...), nil
}

// UpdatePost applies a partial update to an existing post; userID,
// when non-nil, scopes the update to its author.
func (s *Service) UpdatePost(ctx context.Context, id uint32, userID *uint32, patch store.PostPatch) (domain.Post, error) {
	p, err := s.store.UpdatePostFields(ctx, id, userID, patch)
	if err != nil {
		return domain.Post{}, err
	}
	if err := s.cache.UpdatePosts(ctx, []domain.Post{p}); err != nil {
		s.pushFailed(reconcile.FailedPostUpdate, p.ID, err)
	}
	return p, nil
}

func uint32ToString(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
