package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/pixelforum/internal/pkg/httputil"
)

// RequestActivationMail handles POST /auth/activation/mail.
func (h *Handlers) RequestActivationMail(w http.ResponseWriter, r *http.Request) {
	uid, ok := userIDFromCtx(r.Context())
	if !ok {
		writeErr(w, errUnauthorized)
		return
	}
	if _, err := h.forum.RequestActivationMail(r.Context(), uid); err != nil {
		writeErr(w, err)
		return
	}
	httputil.NoContent(w)
}

// ActivateAccount handles GET /auth/activation/mail/{uuid}.
func (h *Handlers) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	u, err := h.forum.ActivateAccount(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, u)
}
