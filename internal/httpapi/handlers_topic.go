package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/pixelforum/internal/forum"
	"github.com/ignite/pixelforum/internal/pkg/httputil"
	"github.com/ignite/pixelforum/internal/store"
)

type newTopicBody struct {
	CategoryID uint32 `json:"category_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Thumbnail  string `json:"thumbnail"`
}

func (h *Handlers) CreateTopic(w http.ResponseWriter, r *http.Request) {
	uid, ok := userIDFromCtx(r.Context())
	if !ok {
		writeErr(w, errUnauthorized)
		return
	}
	var body newTopicBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	t, err := h.forum.CreateTopic(r.Context(), forum.NewTopicRequest{
		UserID: uid, CategoryID: body.CategoryID, Title: body.Title, Body: body.Body, Thumbnail: body.Thumbnail,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.Created(w, t)
}

func (h *Handlers) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint32(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, errBadRequest(err.Error()))
		return
	}
	page := pageParam(r)
	byReplies := r.URL.Query().Get("sort") == "replies"
	t, posts, err := h.forum.GetTopic(r.Context(), id, page, byReplies)
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, map[string]any{"topic": t, "posts": posts})
}

func (h *Handlers) ListTopics(w http.ResponseWriter, r *http.Request) {
	var categoryID uint32
	if v := r.URL.Query().Get("category_id"); v != "" {
		parsed, err := parseUint32(v)
		if err != nil {
			writeErr(w, errBadRequest(err.Error()))
			return
		}
		categoryID = parsed
	}
	topics, err := h.forum.TopicsPage(r.Context(), categoryID, pageParam(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, topics)
}

type updateTopicBody struct {
	ID        uint32  `json:"id"`
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	Thumbnail *string `json:"thumbnail"`
	IsLocked  *bool   `json:"is_locked"`
	IsVisible *bool   `json:"is_visible"`
}

func (h *Handlers) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	uid, ok := userIDFromCtx(r.Context())
	if !ok {
		writeErr(w, errUnauthorized)
		return
	}
	var body updateTopicBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	scope := &uid
	if privilegeFromCtx(r.Context()) >= adminPrivilege {
		scope = nil
	}
	t, err := h.forum.UpdateTopic(r.Context(), body.ID, scope, store.TopicPatch{
		Title: body.Title, Body: body.Body, Thumbnail: body.Thumbnail,
		IsLocked: body.IsLocked, IsVisible: body.IsVisible,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, t)
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

func pageParam(r *http.Request) int {
	v := r.URL.Query().Get("page")
	if v == "" {
		return 1
	}
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 {
		return 1
	}
	return p
}
