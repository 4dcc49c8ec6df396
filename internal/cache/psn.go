package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/domain"
)

// psnProfileKey namespaces a linked account's cached profile by the
// PSN online_id rather than the forum user id, mirroring how the PSN
// request queue itself addresses accounts (see internal/psnqueue).
func psnProfileKey(onlineID string) string {
	return fmt.Sprintf("user_psn:%s:set", onlineID)
}

// PutPSNProfile writes a freshly fetched PSN profile to the cache as
// a single JSON blob under the "profile" hash field — unlike the
// forum entities, a PSN profile has no mutable-vs-immutable split
// worth denormalizing into two hashes.
func (s *Store) PutPSNProfile(ctx context.Context, p domain.UserPSNProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache: encode psn profile: %w", err)
	}
	if err := s.rdb.HSet(ctx, psnProfileKey(p.OnlineID), "profile", raw).Err(); err != nil {
		return fmt.Errorf("cache: put psn profile: %w", err)
	}
	return nil
}

// GetPSNProfile reads a linked account's cached profile by online_id.
func (s *Store) GetPSNProfile(ctx context.Context, onlineID string) (domain.UserPSNProfile, error) {
	raw, err := s.rdb.HGet(ctx, psnProfileKey(onlineID), "profile").Result()
	if err != nil {
		return domain.UserPSNProfile{}, &apierr.IdsFromCache{}
	}
	var p domain.UserPSNProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.UserPSNProfile{}, fmt.Errorf("cache: decode psn profile: %w", err)
	}
	return p, nil
}
