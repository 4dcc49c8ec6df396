package domain

// Category groups topics. TopicCount/PostCount are the durable
// lifetime counters; TopicCountNew/PostCountNew are rebuilt by the
// reconciliation scheduler's list-update task from the last 24h of
// activity and are not persisted to Postgres.
type Category struct {
	ID            uint32 `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Thumbnail     string `json:"thumbnail" db:"thumbnail"`
	TopicCount    uint32 `json:"topic_count" db:"topic_count"`
	PostCount     uint32 `json:"post_count" db:"post_count"`
	TopicCountNew uint32 `json:"topic_count_new" db:"-"`
	PostCountNew  uint32 `json:"post_count_new" db:"-"`
}

// SelfID returns the category's own id.
func (c Category) SelfID() uint32 { return c.ID }
