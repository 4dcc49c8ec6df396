// Package authimpl is the concrete JWT/bcrypt Authenticator wired into
// cmd/server. spec.md treats JWT issuance and password hashing as
// external collaborators referenced only at internal/httpapi.
// Authenticator's interface; this package is that collaborator, kept
// out of internal/httpapi itself so the interface boundary stays real.
//
// Grounded on original_source/src/util/{jwt,hash}.rs: jsonwebtoken's
// encode/decode with the default HS256 header becomes
// github.com/golang-jwt/jwt/v5, and the bcrypt crate's hash/verify
// pair becomes golang.org/x/crypto/bcrypt — both already indirect
// deps of the teacher repo, promoted to direct use here.
package authimpl

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignite/pixelforum/internal/apierr"
)

const tokenLifetime = 30 * 24 * time.Hour

// claims generalizes JwtPayLoad with a Privilege field: the original
// JWT carried only user_id, but spec.md's admin-bypass-of-author-
// scoping pattern needs the caller's privilege available without a
// database round trip on every request.
type claims struct {
	UserID    uint32 `json:"user_id"`
	Privilege uint32 `json:"privilege"`
	jwt.RegisteredClaims
}

// Authenticator implements httpapi.Authenticator with HMAC-signed JWTs
// and bcrypt password hashes.
type Authenticator struct {
	secret     []byte
	hashRounds int
}

// New builds an Authenticator. hashRounds below bcrypt.MinCost falls
// back to bcrypt.DefaultCost, matching DEFAULT_COST's role in the
// original's hash_password.
func New(secret string, hashRounds int) *Authenticator {
	if hashRounds < bcrypt.MinCost {
		hashRounds = bcrypt.DefaultCost
	}
	return &Authenticator{secret: []byte(secret), hashRounds: hashRounds}
}

// Authenticate validates a bearer token and returns the caller's
// identity, matching JwtPayLoad::decode's exp check (surfaced there as
// AuthTimeout, a variant of this package's apierr.ErrAuthTimeout).
func (a *Authenticator) Authenticate(_ context.Context, token string) (uint32, uint32, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, 0, apierr.ErrAuthTimeout
		}
		return 0, 0, apierr.ErrUnauthorized
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return 0, 0, apierr.ErrUnauthorized
	}
	return c.UserID, c.Privilege, nil
}

// HashPassword produces the bcrypt digest stored as User.HashedPassword.
func (a *Authenticator) HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), a.hashRounds)
	if err != nil {
		return "", apierr.ErrInternal
	}
	return string(digest), nil
}

// VerifyPassword reports whether password matches hashed.
func (a *Authenticator) VerifyPassword(password, hashed string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		return apierr.ErrWrongPassword
	}
	return nil
}

// IssueToken mints a 30-day bearer token, matching JwtPayLoad::new's
// iat/exp window.
func (a *Authenticator) IssueToken(userID uint32, privilege uint32) (string, error) {
	now := time.Now()
	c := claims{
		UserID:    userID,
		Privilege: privilege,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", apierr.ErrInternal
	}
	return signed, nil
}
