package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/pixelforum/internal/apierr"
)

// AddActivationMail enqueues a pending account-activation email keyed
// by a fresh uuid, de-duplicating on the user id: if this user
// already has a pending activation mail in the queue, the new one is
// dropped rather than creating a second outstanding activation link.
func (s *Store) AddActivationMail(ctx context.Context, userID uint32, mail string) (string, error) {
	count, err := s.rdb.ZCount(ctx, "mail_queue", fmt.Sprint(userID), fmt.Sprint(userID)).Result()
	if err != nil {
		return "", fmt.Errorf("cache: check mail queue: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	id := uuid.New().String()
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, "mail_queue", redis.Z{Score: float64(userID), Member: mail})
		pipe.HSet(ctx, id, "user_id", userID)
		pipe.Expire(ctx, id, MailLife)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("cache: add activation mail: %w", err)
	}
	return id, nil
}

// ResolveActivationMail looks up the user id a pending activation
// link's uuid was issued for, per the "<uuid> -> {user_id}" hash
// AddActivationMail wrote. Returns apierr.ErrNotFound once the link
// has expired (HASH_LIFE analog: MailLife) or was already consumed.
func (s *Store) ResolveActivationMail(ctx context.Context, id string) (uint32, error) {
	val, err := s.rdb.HGet(ctx, id, "user_id").Result()
	if err == redis.Nil {
		return 0, apierr.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("cache: resolve activation mail: %w", err)
	}
	var userID uint32
	if _, err := fmt.Sscanf(val, "%d", &userID); err != nil {
		return 0, fmt.Errorf("cache: parse activation user id: %w", err)
	}
	if err := s.rdb.Del(ctx, id).Err(); err != nil {
		return 0, fmt.Errorf("cache: consume activation mail: %w", err)
	}
	return userID, nil
}

// SetOnlineStatus overlays a user's presence onto "user:<id>:set_perm",
// optionally stamping last_online (used on disconnect, not connect).
func (s *Store) SetOnlineStatus(ctx context.Context, userID uint32, status uint32, stampLastOnline bool) error {
	key := fmt.Sprintf("user:%d:set_perm", userID)
	fields := map[string]interface{}{"online_status": status}
	if stampLastOnline {
		fields["last_online"] = formatTime(nowUTC())
	}
	if err := s.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("cache: set online status: %w", err)
	}
	return nil
}
