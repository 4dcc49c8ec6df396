package domain

import "time"

// TrophySummary mirrors the PSN API's trophy-level summary for a profile.
type TrophySummary struct {
	Level          uint32 `json:"level"`
	Progress       uint32 `json:"progress"`
	EarnedPlatinum uint32 `json:"earned_platinum"`
	EarnedGold     uint32 `json:"earned_gold"`
	EarnedSilver   uint32 `json:"earned_silver"`
	EarnedBronze   uint32 `json:"earned_bronze"`
}

// UserPSNProfile is the cached snapshot of a linked PlayStation Network
// account, attached to a forum User by ID (nil until linked/activated).
type UserPSNProfile struct {
	UserID        *uint32       `json:"user_id,omitempty"`
	OnlineID      string        `json:"online_id"`
	NpID          string        `json:"np_id"`
	Region        string        `json:"region"`
	AvatarURL     string        `json:"avatar_url"`
	AboutMe       string        `json:"about_me"`
	LanguagesUsed []string      `json:"languages_used"`
	IsPlus        bool          `json:"is_plus"`
	TrophySummary TrophySummary `json:"trophy_summary"`
}

// SelfID satisfies the cache layer's id-keying contract using the
// linked forum user id; unlinked profiles are never cached by id.
func (p UserPSNProfile) SelfID() uint32 {
	if p.UserID == nil {
		return 0
	}
	return *p.UserID
}

// UserTrophyTitle is one row of psn_user_trophy_titles: the
// aggregate per-game trophy progress for an account.
type UserTrophyTitle struct {
	NpID              string    `db:"np_id"`
	NpCommunicationID string    `db:"np_communication_id"`
	Progress          uint32    `db:"progress"`
	EarnedPlatinum    uint32    `db:"earned_platinum"`
	EarnedGold        uint32    `db:"earned_gold"`
	EarnedSilver      uint32    `db:"earned_silver"`
	EarnedBronze      uint32    `db:"earned_bronze"`
	LastUpdateDate    time.Time `db:"last_update_date"`
	IsVisible         bool      `db:"is_visible"`
}

// Trophy is one entry within a UserTrophySet.
type Trophy struct {
	TrophyID        uint32     `json:"trophy_id"`
	EarnedDate      *time.Time `json:"earned_date,omitempty"`
	FirstEarnedDate *time.Time `json:"first_earned_date,omitempty"`
}

// UserTrophySet is the full per-game trophy list for an account,
// stored as psn_user_trophy_sets.trophy_set.
type UserTrophySet struct {
	NpID              string   `db:"np_id"`
	NpCommunicationID string   `db:"np_communication_id"`
	IsVisible         bool     `db:"is_visible"`
	Trophies          []Trophy `db:"-"`
}
