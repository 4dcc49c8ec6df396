// Package psnqueue is the single-consumer PSN request actor: a
// rate-limited, time-gated queue in front of the PlayStation Network
// API, matching original_source/src/handler/psn.rs's PSNService.
package psnqueue

import (
	"fmt"

	"github.com/ignite/pixelforum/internal/apierr"
)

// RequestKind tags which PSN operation a Request carries, playing the
// role of the original's #[serde(tag = "query_type")] enum.
type RequestKind int

const (
	KindProfile RequestKind = iota
	KindTrophyTitles
	KindTrophySet
	KindAuth
	KindActivation
)

// Request is a unit of PSN work. Only the fields relevant to Kind are
// populated; this mirrors the Rust tagged enum's per-variant payload
// without Go's lack of sum types forcing a type per variant.
type Request struct {
	Kind RequestKind

	OnlineID          string
	Page              string
	NpCommunicationID string

	NPSSO        *string
	RefreshToken *string

	UserID *uint32
	Code   string
}

// PrivilegedAdminLevel is the minimum privilege required to enqueue an
// Auth or Activation request ahead of the ordinary time-ordered queue.
const PrivilegedAdminLevel = 9

// CheckPrivilege mirrors PSNRequest::check_privilege: only accounts at
// or above PrivilegedAdminLevel may submit requests that bypass the
// normal per-account rate gating (Auth/Activation are always let
// through by should_add_queue regardless of privilege; this check is
// the HTTP-layer gate on who may submit them at all).
func (r Request) CheckPrivilege(privilege uint32) (Request, error) {
	if privilege < PrivilegedAdminLevel {
		return Request{}, apierr.ErrUnauthorized
	}
	return r, nil
}

// AttachUserID stamps the forum user id issuing an Activation request;
// every other kind passes through unchanged.
func (r Request) AttachUserID(uid uint32) Request {
	if r.Kind == KindActivation {
		r.UserID = &uid
	}
	return r
}

// entryKey forms the per-account time-gate key. Profile gates on the
// account alone; TrophyTitles and TrophySet further scope the gate to
// the specific resource being synced, matching generate_entry_key.
func (r Request) entryKey() string {
	switch r.Kind {
	case KindProfile:
		return r.OnlineID
	case KindTrophyTitles:
		return r.OnlineID + ":::titles"
	case KindTrophySet:
		return r.OnlineID + ":::" + r.NpCommunicationID
	default:
		return ""
	}
}

func (k RequestKind) String() string {
	switch k {
	case KindProfile:
		return "profile"
	case KindTrophyTitles:
		return "trophy_titles"
	case KindTrophySet:
		return "trophy_set"
	case KindAuth:
		return "auth"
	case KindActivation:
		return "activation"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}
