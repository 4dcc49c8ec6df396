package forum

import (
	"context"

	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/logger"
	"github.com/ignite/pixelforum/internal/reconcile"
)

// RequestActivationMail enqueues a pending activation link for a
// banned-pending-activation account, returning the link's uuid. A
// user that already has a pending link gets an empty string back
// (internal/cache.AddActivationMail's own de-dup), not an error.
// Actual delivery is out of this repo's core scope (spec.md §4.5); the
// link is logged the way a stand-in mail collaborator would send it,
// grounded on original_source/src/handler/email.rs's send_mail body
// ("visit this link to activate your account: {url}/activation/{uuid}").
func (s *Service) RequestActivationMail(ctx context.Context, userID uint32) (string, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	id, err := s.cache.AddActivationMail(ctx, u.ID, "")
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", nil
	}

	logger.Info("forum: activation mail queued", "user_id", u.ID, "username", u.Username, "address", u.Email, "uuid", id)
	return id, nil
}

// ActivateAccount consumes an activation link and raises the account
// out of PrivilegeBanned.
func (s *Service) ActivateAccount(ctx context.Context, uuid string) (domain.User, error) {
	userID, err := s.cache.ResolveActivationMail(ctx, uuid)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.store.ActivateUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.cache.UpdateUsers(ctx, []domain.User{u}); err != nil {
		s.pushFailed(reconcile.FailedUser, u.ID, err)
	}
	return u, nil
}
