package httpapi

import (
	"errors"
	"net/http"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/forum"
	"github.com/ignite/pixelforum/internal/pkg/httputil"
)

type registerBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. Grounded on register_user in
// original_source/src/handler/user_async.rs: reject a duplicate
// username before hashing, then insert. Only the username is checked;
// a duplicate email is not detected here.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	if _, err := h.forum.UserByUsername(r.Context(), body.Username); err == nil {
		writeErr(w, apierr.ErrUsernameTaken)
		return
	} else if !errors.Is(err, apierr.ErrNotFound) {
		writeErr(w, err)
		return
	}

	hashed, err := h.auth.HashPassword(body.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	u, err := h.forum.CreateUser(r.Context(), forum.NewUserRequest{
		Username: body.Username, Email: body.Email, HashedPassword: hashed, Privilege: domain.PrivilegeBanned,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.Created(w, u)
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// Login verifies the password and mints a bearer token. Grounded on
// login_user in original_source/src/handler/user_async.rs: a blocked
// account is rejected before the password check even runs.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	u, err := h.forum.UserByUsername(r.Context(), body.Username)
	if err != nil {
		writeErr(w, err)
		return
	}
	if u.IsBlocked() {
		writeErr(w, apierr.ErrBlocked)
		return
	}
	if err := h.auth.VerifyPassword(body.Password, u.HashedPassword); err != nil {
		writeErr(w, err)
		return
	}
	token, err := h.auth.IssueToken(u.ID, u.Privilege)
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, loginResponse{Token: token, User: u})
}
