package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/pixelforum/internal/forum"
	"github.com/ignite/pixelforum/internal/pkg/httputil"
)

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.forum.ListCategories(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, categories)
}

type newCategoryBody struct {
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var body newCategoryBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	c, err := h.forum.CreateCategory(r.Context(), forum.NewCategoryRequest{Name: body.Name, Thumbnail: body.Thumbnail})
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.Created(w, c)
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint32(chi.URLParam(r, "cid"))
	if err != nil {
		writeErr(w, errBadRequest(err.Error()))
		return
	}
	if err := h.forum.DeleteCategory(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	httputil.NoContent(w)
}
