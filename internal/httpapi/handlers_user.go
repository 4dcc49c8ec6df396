package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/pixelforum/internal/pkg/httputil"
	"github.com/ignite/pixelforum/internal/store"
)

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint32(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, errBadRequest(err.Error()))
		return
	}
	u, err := h.forum.GetUser(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, u)
}

type updateUserBody struct {
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar_url"`
	Signature *string `json:"signature"`
	ShowEmail *bool   `json:"show_email"`
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := userIDFromCtx(r.Context())
	if !ok {
		writeErr(w, errUnauthorized)
		return
	}
	var body updateUserBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	u, err := h.forum.UpdateUser(r.Context(), uid, store.UserPatch{
		Username: body.Username, AvatarURL: body.AvatarURL, Signature: body.Signature, ShowEmail: body.ShowEmail,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, u)
}
