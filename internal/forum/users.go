package forum

import (
	"context"
	"errors"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/reconcile"
	"github.com/ignite/pixelforum/internal/store"
)

// NewUserRequest is the payload for account creation. Password
// hashing happens in the (out-of-scope) auth collaborator before this
// is called — HashedPassword already holds the bcrypt digest.
// Privilege is domain.PrivilegeBanned for ordinary self-registration
// (pending ActivateAccount) and domain.PrivilegeUser or above for an
// admin-provisioned account, which skips activation entirely.
type NewUserRequest struct {
	Username       string
	Email          string
	HashedPassword string
	Privilege      uint32
}

// CreateUser allocates a user id, persists the account, and writes
// through to the cache.
func (s *Service) CreateUser(ctx context.Context, req NewUserRequest) (domain.User, error) {
	u := domain.User{
		ID:             s.ids.NextUserID(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: req.HashedPassword,
		Privilege:      req.Privilege,
	}
	if err := s.store.InsertUser(ctx, &u); err != nil {
		return domain.User{}, err
	}
	if err := s.cache.UpdateUsers(ctx, []domain.User{u}); err != nil {
		s.pushFailed(reconcile.FailedUser, u.ID, err)
	}
	return u, nil
}

// UserByUsername looks up a user by username for the login/
// registration flow. Usernames aren't cached (see
// internal/store.GetUserByUsername), so this always hits the store.
func (s *Service) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	return *u, nil
}

// GetUser returns a single user by id, falling back to the store on a
// cache miss and scheduling a best-effort repair.
func (s *Service) GetUser(ctx context.Context, id uint32) (domain.User, error) {
	users, err := s.getUsersByIDs(ctx, []uint32{id})
	if err != nil {
		return domain.User{}, err
	}
	if len(users) == 0 {
		return domain.User{}, apierr.ErrNotFound
	}
	return users[0], nil
}

func (s *Service) getUsersByIDs(ctx context.Context, ids []uint32) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := s.cache.GetUsers(ctx, ids)
	var idsErr *apierr.IdsFromCache
	if err == nil {
		return users, nil
	}
	if !errors.As(err, &idsErr) {
		return nil, err
	}

	fromStore, err := s.store.GetUsers(ctx, idsErr.IDs)
	if err != nil {
		return nil, err
	}
	repairAsync(func(ctx context.Context) error { return s.cache.UpdateUsers(ctx, fromStore) })
	return append(users, fromStore...), nil
}

// UpdateUser applies a partial update to the mutable profile fields.
func (s *Service) UpdateUser(ctx context.Context, id uint32, patch store.UserPatch) (domain.User, error) {
	u, err := s.store.UpdateUserFields(ctx, id, patch)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.cache.UpdateUsers(ctx, []domain.User{u}); err != nil {
		s.pushFailed(reconcile.FailedUser, u.ID, err)
	}
	return u, nil
}

// TouchOnline updates a user's presence perm fields directly in the
// cache (no primary-store write — online_status/last_online are
// cache-owned, per spec.md invariant 3). stampLastOnline is true on
// disconnect, so last_online records "when last seen" rather than
// being refreshed on every heartbeat.
func (s *Service) TouchOnline(ctx context.Context, id uint32, status uint32, stampLastOnline bool) error {
	return s.cache.SetOnlineStatus(ctx, id, status, stampLastOnline)
}
