package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/pixelforum/internal/forum"
	"github.com/ignite/pixelforum/internal/pkg/httputil"
	"github.com/ignite/pixelforum/internal/store"
)

type newPostBody struct {
	TopicID    uint32 `json:"topic_id"`
	CategoryID uint32 `json:"category_id"`
	PostID     uint32 `json:"post_id"`
	Content    string `json:"content"`
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	uid, ok := userIDFromCtx(r.Context())
	if !ok {
		writeErr(w, errUnauthorized)
		return
	}
	var body newPostBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	p, err := h.forum.CreatePost(r.Context(), forum.NewPostRequest{
		UserID: uid, TopicID: body.TopicID, CategoryID: body.CategoryID, PostID: body.PostID, Content: body.Content,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.Created(w, p)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint32(chi.URLParam(r, "pid"))
	if err != nil {
		writeErr(w, errBadRequest(err.Error()))
		return
	}
	p, err := h.forum.GetPost(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, p)
}

type updatePostBody struct {
	ID        uint32  `json:"id"`
	Content   *string `json:"content"`
	IsLocked  *bool   `json:"is_locked"`
	IsVisible *bool   `json:"is_visible"`
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	uid, ok := userIDFromCtx(r.Context())
	if !ok {
		writeErr(w, errUnauthorized)
		return
	}
	var body updatePostBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	scope := &uid
	if privilegeFromCtx(r.Context()) >= adminPrivilege {
		scope = nil
	}
	p, err := h.forum.UpdatePost(r.Context(), body.ID, scope, store.PostPatch{
		Content: body.Content, IsLocked: body.IsLocked, IsVisible: body.IsVisible,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, p)
}
