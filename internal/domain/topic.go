package domain

import "time"

// Topic is a forum thread. ReplyCount/LastReplyTime are the perm
// fields maintained by every AddPost call and overlaid from
// "topic:<id>:set_perm".
type Topic struct {
	ID         uint32    `json:"id" db:"id"`
	UserID     uint32    `json:"user_id" db:"user_id"`
	CategoryID uint32    `json:"category_id" db:"category_id"`
	Title      string    `json:"title" db:"title"`
	Body       string    `json:"body" db:"body"`
	Thumbnail  string    `json:"thumbnail" db:"thumbnail"`
	IsLocked   bool      `json:"is_locked" db:"is_locked"`
	IsVisible  bool      `json:"is_visible" db:"is_visible"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	ReplyCount    uint32    `json:"reply_count" db:"-"`
	LastReplyTime time.Time `json:"last_reply_time" db:"-"`
}

// SelfID returns the topic's own id.
func (t Topic) SelfID() uint32 { return t.ID }

// ShouldExpire marks Topic hashes as subject to the cache layer's
// HASH_LIFE TTL.
func (t Topic) ShouldExpire() bool { return true }
