package domain

import "time"

// Post is a reply within a Topic. PostID, when non-zero, names the
// parent post this one replies to (a post replying directly to the
// topic has PostID == 0).
type Post struct {
	ID         uint32    `json:"id" db:"id"`
	UserID     uint32    `json:"user_id" db:"user_id"`
	TopicID    uint32    `json:"topic_id" db:"topic_id"`
	CategoryID uint32    `json:"category_id" db:"category_id"`
	PostID     uint32    `json:"post_id,omitempty" db:"post_id"`
	Content    string    `json:"post_content" db:"post_content"`
	IsLocked   bool      `json:"is_locked" db:"is_locked"`
	IsVisible  bool      `json:"is_visible" db:"is_visible"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	ReplyCount    uint32    `json:"reply_count" db:"-"`
	LastReplyTime time.Time `json:"last_reply_time" db:"-"`
}

// SelfID returns the post's own id.
func (p Post) SelfID() uint32 { return p.ID }

// ShouldExpire marks Post hashes as subject to the cache layer's
// HASH_LIFE TTL.
func (p Post) ShouldExpire() bool { return true }
