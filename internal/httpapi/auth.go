package httpapi

import (
	"context"
	"net/http"
	"strings"
)

// Authenticator is the JWT/password-hashing seam: per spec.md §6/§7,
// those concerns are explicitly out of this repo's core scope, so
// handlers depend only on this interface, never on a concrete
// JWT/bcrypt implementation (grounded on
// original_source/src/handler/auth.rs's JwtPayLoad::decode +
// src/util/hash's hash_password/verify_password, kept at the
// interface described there rather than reimplemented).
type Authenticator interface {
	// Authenticate validates a bearer token and returns the caller's
	// user id and privilege level. Returns apierr.ErrUnauthorized (or
	// apierr.ErrAuthTimeout for an expired credential) on failure.
	Authenticate(ctx context.Context, token string) (userID uint32, privilege uint32, err error)

	// HashPassword produces the digest stored as User.HashedPassword.
	HashPassword(password string) (string, error)

	// VerifyPassword reports whether password matches hashed.
	// Returns apierr.ErrWrongPassword on mismatch.
	VerifyPassword(password, hashed string) error

	// IssueToken mints a bearer token for a successful login,
	// encoding userID and privilege the way Authenticate decodes them.
	IssueToken(userID uint32, privilege uint32) (string, error)
}

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxPrivilege
)

// RequireAuth extracts a bearer token from Authorization, resolves it
// via auth, and stores the caller's identity in the request context
// for downstream handlers.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeErr(w, errUnauthorized)
				return
			}
			uid, priv, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeErr(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserID, uid)
			ctx = context.WithValue(ctx, ctxPrivilege, priv)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func userIDFromCtx(ctx context.Context) (uint32, bool) {
	v, ok := ctx.Value(ctxUserID).(uint32)
	return v, ok
}

func privilegeFromCtx(ctx context.Context) uint32 {
	v, _ := ctx.Value(ctxPrivilege).(uint32)
	return v
}
