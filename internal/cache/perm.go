package cache

import (
	"strconv"

	"github.com/ignite/pixelforum/internal/domain"
)

// attachTopicPerm overlays the "topic:<id>:set_perm" fields (written
// incrementally by every AddPost) onto an entity read from ":set".
func attachTopicPerm(t domain.Topic, perm map[string]string) domain.Topic {
	if v, ok := perm["reply_count"]; ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			t.ReplyCount = uint32(n)
		}
	}
	if v, ok := perm["last_reply_time"]; ok {
		if ts, err := parseTime(v); err == nil {
			t.LastReplyTime = ts
		}
	}
	return t
}

// attachPostPerm overlays a post's set_perm fields.
func attachPostPerm(p domain.Post, perm map[string]string) domain.Post {
	if v, ok := perm["reply_count"]; ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			p.ReplyCount = uint32(n)
		}
	}
	if v, ok := perm["last_reply_time"]; ok {
		if ts, err := parseTime(v); err == nil {
			p.LastReplyTime = ts
		}
	}
	return p
}

// attachUserPerm overlays a user's set_perm fields (online presence).
func attachUserPerm(u domain.User, perm map[string]string) domain.User {
	if v, ok := perm["online_status"]; ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			u.OnlineStatus = uint32(n)
		}
	}
	if v, ok := perm["last_online"]; ok {
		if ts, err := parseTime(v); err == nil {
			u.LastOnline = ts
		}
	}
	return u
}
