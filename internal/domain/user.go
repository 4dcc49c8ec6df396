// Package domain holds the entity types shared by the store and cache
// layers: the immutable/mutable field split mirrors how each entity is
// persisted in Postgres and overlaid in Redis (see internal/cache).
package domain

import "time"

// Privilege levels, low to high.
const (
	PrivilegeBanned = 0
	PrivilegeUser   = 1
	PrivilegeMod    = 5
	PrivilegeAdmin  = 9
)

// User is a forum account. Username/Email/AvatarURL/Signature are
// immutable-ish (rarely written, cached in the ":set" hash);
// OnlineStatus/LastOnline are the perm fields (cached in ":set_perm").
type User struct {
	ID             uint32    `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email,omitempty" db:"email"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	AvatarURL      string    `json:"avatar_url" db:"avatar_url"`
	Signature      string    `json:"signature" db:"signature"`
	ShowEmail      bool      `json:"show_email" db:"show_email"`
	Privilege      uint32    `json:"privilege" db:"privilege"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	// Perm fields, overlaid from "user:<id>:set_perm".
	LastOnline   time.Time `json:"last_online" db:"-"`
	OnlineStatus uint32    `json:"online_status" db:"-"`
}

// SelfID returns the user's own id, satisfying the cache layer's
// self-identifying-entity contract.
func (u User) SelfID() uint32 { return u.ID }

// IsActive reports whether the account has completed activation.
func (u User) IsActive() bool { return u.Privilege > PrivilegeBanned }

// IsBlocked reports whether the account is banned.
func (u User) IsBlocked() bool { return u.Privilege == PrivilegeBanned }
