package httpapi

import (
	"net/http"

	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/forum"
	"github.com/ignite/pixelforum/internal/pkg/httputil"
)

// RequireAdmin rejects any request from a caller below PrivilegeAdmin.
// Mounted in front of the /admin route group, after RequireAuth has
// already populated the request context.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if privilegeFromCtx(r.Context()) < adminPrivilege {
			writeErr(w, errUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminCreateCategory handles POST /admin/category.
func (h *Handlers) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	h.CreateCategory(w, r)
}

// AdminRemoveCategory handles GET /admin/category/remove/{cid}.
func (h *Handlers) AdminRemoveCategory(w http.ResponseWriter, r *http.Request) {
	h.DeleteCategory(w, r)
}

type adminUserBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminCreateUser handles POST /admin/user — an admin-provisioned
// account created at PrivilegeUser directly, skipping the
// activation-mail flow ordinary self-registration goes through.
func (h *Handlers) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var body adminUserBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	hashed, err := h.auth.HashPassword(body.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	u, err := h.forum.CreateUser(r.Context(), forum.NewUserRequest{
		Username: body.Username, Email: body.Email, HashedPassword: hashed, Privilege: domain.PrivilegeUser,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.Created(w, u)
}

// AdminCreateTopic handles POST /admin/topic — identical to the
// author-facing create path; admin requests simply aren't scoped by
// author id on the subsequent update path.
func (h *Handlers) AdminCreateTopic(w http.ResponseWriter, r *http.Request) {
	h.CreateTopic(w, r)
}

// AdminCreatePost handles POST /admin/post.
func (h *Handlers) AdminCreatePost(w http.ResponseWriter, r *http.Request) {
	h.CreatePost(w, r)
}
