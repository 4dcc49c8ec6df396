package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/pixelforum/internal/domain"
)

// GetUsers fetches users by id, in no particular order. Ids with no
// matching row are simply absent from the result — callers that need
// to know which ids were missing should diff against the input.
func (p *Pool) GetUsers(ctx context.Context, ids []uint32) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph, args := idPlaceholders(ids)
	rows, err := p.DB.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, username, email, hashed_password, avatar_url, signature, show_email, privilege, created_at, updated_at
		 FROM users WHERE id IN (%s)`, ph), args...)
	if err != nil {
		return nil, fmt.Errorf("store: get users: %w", err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.AvatarURL,
			&u.Signature, &u.ShowEmail, &u.Privilege, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetUserByUsername is used by the login/registration flow; it is not
// part of the cache-through layer since usernames aren't cached.
func (p *Pool) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := p.DB.QueryRowContext(ctx,
		`SELECT id, username, email, hashed_password, avatar_url, signature, show_email, privilege, created_at, updated_at
		 FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.AvatarURL,
		&u.Signature, &u.ShowEmail, &u.Privilege, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user by username: %w", err)
	}
	return &u, nil
}

// InsertUser creates a new account, stamping ID/CreatedAt/UpdatedAt
// from the RETURNING clause.
func (p *Pool) InsertUser(ctx context.Context, u *domain.User) error {
	return p.stmt(stmtInsertUser).QueryRowContext(ctx,
		u.Username, u.Email, u.HashedPassword, u.AvatarURL, u.Signature, u.ShowEmail, u.Privilege,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// UpdateUserFields applies a partial update of the mutable profile
// fields (username, avatar, signature, show_email) and returns the
// resulting row.
func (p *Pool) UpdateUserFields(ctx context.Context, id uint32, patch UserPatch) (domain.User, error) {
	var b patchBuilder
	b.setIfString("username", patch.Username)
	b.setIfString("avatar_url", patch.AvatarURL)
	b.setIfString("signature", patch.Signature)
	b.setIfBool("show_email", patch.ShowEmail)

	setClause, idPH, args, err := b.build(id)
	if err != nil {
		return domain.User{}, err
	}
	setClause += ", updated_at = NOW()"

	var u domain.User
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = %s
		RETURNING id, username, email, hashed_password, avatar_url, signature, show_email, privilege, created_at, updated_at`,
		setClause, idPH)
	row := p.DB.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.AvatarURL,
		&u.Signature, &u.ShowEmail, &u.Privilege, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("store: update user: %w", err)
	}
	return u, nil
}

// ActivateUser raises a pending account to PrivilegeUser, completing
// the activation-mail flow.
func (p *Pool) ActivateUser(ctx context.Context, id uint32) (domain.User, error) {
	var u domain.User
	row := p.DB.QueryRowContext(ctx,
		`UPDATE users SET privilege = $1, updated_at = NOW() WHERE id = $2 AND privilege = $3
		 RETURNING id, username, email, hashed_password, avatar_url, signature, show_email, privilege, created_at, updated_at`,
		domain.PrivilegeUser, id, domain.PrivilegeBanned)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.AvatarURL,
		&u.Signature, &u.ShowEmail, &u.Privilege, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("store: activate user: %w", err)
	}
	return u, nil
}

// MaxUserID is used by internal/idalloc to bootstrap the allocator.
func (p *Pool) MaxUserID(ctx context.Context) (uint32, error) {
	var id uint32
	err := p.stmt(stmtMaxUserID).QueryRowContext(ctx).Scan(&id)
	return id, err
}
