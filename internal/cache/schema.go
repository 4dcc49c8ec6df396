package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ignite/pixelforum/internal/domain"
)

// timeLayout mirrors a Postgres-style naive timestamp, used by the
// set_perm overlay fields (last_reply_time, last_online) so the
// on-wire representation stays human-readable when inspected directly
// in Redis.
const timeLayout = "2006-01-02 15:04:05.999999999"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func nowUTC() time.Time { return time.Now().UTC() }

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

// topicSetFields returns the ":set" hash written for a topic: a
// single "topic" field holding the whole entity as JSON, the same
// convention PutPSNProfile uses for "profile". ReplyCount/
// LastReplyTime ride along in the blob but are meaningless until
// attachTopicPerm overlays the set_perm hash on every read.
func topicSetFields(t domain.Topic) (map[string]interface{}, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("cache: encode topic: %w", err)
	}
	return map[string]interface{}{"topic": raw}, nil
}

func topicFromFields(m map[string]string) (domain.Topic, error) {
	var t domain.Topic
	if err := json.Unmarshal([]byte(m["topic"]), &t); err != nil {
		return domain.Topic{}, fmt.Errorf("cache: decode topic: %w", err)
	}
	return t, nil
}

// postSetFields returns the ":set" hash written for a post, mirroring topicSetFields.
func postSetFields(p domain.Post) (map[string]interface{}, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("cache: encode post: %w", err)
	}
	return map[string]interface{}{"post": raw}, nil
}

func postFromFields(m map[string]string) (domain.Post, error) {
	var p domain.Post
	if err := json.Unmarshal([]byte(m["post"]), &p); err != nil {
		return domain.Post{}, fmt.Errorf("cache: decode post: %w", err)
	}
	return p, nil
}

// categorySetFields returns the ":set" hash written for a category.
// Unlike topic/post/user, this hash also carries topic_count_new/
// post_count_new as their own scalar fields alongside the "category"
// blob — internal/reconcile's list-rebuild scheduler HSets those
// directly onto the same key without going through this package.
func categorySetFields(c domain.Category) (map[string]interface{}, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("cache: encode category: %w", err)
	}
	return map[string]interface{}{"category": raw}, nil
}

func categoryFromFields(m map[string]string) (domain.Category, error) {
	var c domain.Category
	if err := json.Unmarshal([]byte(m["category"]), &c); err != nil {
		return domain.Category{}, fmt.Errorf("cache: decode category: %w", err)
	}
	if v, ok := m["topic_count_new"]; ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.TopicCountNew = uint32(n)
		}
	}
	if v, ok := m["post_count_new"]; ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.PostCountNew = uint32(n)
		}
	}
	return c, nil
}

// userSetFields returns the ":set" hash written for a user.
func userSetFields(u domain.User) (map[string]interface{}, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("cache: encode user: %w", err)
	}
	return map[string]interface{}{"user": raw}, nil
}

func userFromFields(m map[string]string) (domain.User, error) {
	var u domain.User
	if err := json.Unmarshal([]byte(m["user"]), &u); err != nil {
		return domain.User{}, fmt.Errorf("cache: decode user: %w", err)
	}
	return u, nil
}
