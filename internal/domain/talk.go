package domain

import "time"

// Talk is a chat room. Users holds every member id; Admin holds
// members promoted to room-admin (distinct from the forum-wide
// PrivilegeAdmin).
type Talk struct {
	ID    uint32   `json:"id" db:"id"`
	Name  string   `json:"name" db:"name"`
	Owner uint32   `json:"owner" db:"owner"`
	Admin []uint32 `json:"admin" db:"admin"`
	Users []uint32 `json:"users" db:"users"`
}

// SelfID returns the talk's own id.
func (t Talk) SelfID() uint32 { return t.ID }

// PublicMessage is broadcast to every member of a Talk room.
type PublicMessage struct {
	TalkID uint32    `json:"talk_id" db:"talk_id"`
	Time   time.Time `json:"time" db:"time"`
	Text   string    `json:"text" db:"text"`
	UserID uint32    `json:"user_id" db:"user_id"`
}

// PrivateMessage is a direct message between two users.
type PrivateMessage struct {
	ToID   uint32    `json:"to_id" db:"to_id"`
	Time   time.Time `json:"time" db:"time"`
	Text   string    `json:"text" db:"text"`
	UserID uint32    `json:"user_id" db:"user_id"`
}
