package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/pkg/httputil"
	"github.com/ignite/pixelforum/internal/psnqueue"
)

// GetPSNProfile handles GET /psn?online_id=.... A cache miss enqueues
// a profile sync (time-gated, see psnqueue.ProfileTimeGate) and
// responds 204 rather than blocking on the PSN API round trip.
func (h *Handlers) GetPSNProfile(w http.ResponseWriter, r *http.Request) {
	onlineID := r.URL.Query().Get("online_id")
	if onlineID == "" {
		writeErr(w, errBadRequest("online_id is required"))
		return
	}

	profile, err := h.cache.GetPSNProfile(r.Context(), onlineID)
	var idsErr *apierr.IdsFromCache
	if err == nil {
		httputil.OK(w, profile)
		return
	}
	if !errors.As(err, &idsErr) {
		writeErr(w, err)
		return
	}

	h.psn.Push(psnqueue.Request{Kind: psnqueue.KindProfile, OnlineID: onlineID}, false)
	writeErr(w, apierr.ErrNoContent)
}

type psnAuthBody struct {
	NPSSO        string `json:"npsso"`
	RefreshToken string `json:"refresh_token"`
}

// PSNAuth handles GET /psn/auth — admin-only, establishes or refreshes
// the queue's PSN API session ahead of every other queued request.
func (h *Handlers) PSNAuth(w http.ResponseWriter, r *http.Request) {
	var body psnAuthBody
	if !httputil.Decode(w, r, &body) {
		return
	}
	req, err := psnqueue.Request{
		Kind: psnqueue.KindAuth, NPSSO: &body.NPSSO, RefreshToken: &body.RefreshToken,
	}.CheckPrivilege(privilegeFromCtx(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	h.psn.Push(req, true)
	httputil.NoContent(w)
}

// PSNCommunity handles GET /psn/community?np_id=...&page=N, reading
// aggregate trophy-title progress straight from the primary store —
// this listing isn't part of the cache-through layer (see
// internal/store.GetTrophyTitles).
func (h *Handlers) PSNCommunity(w http.ResponseWriter, r *http.Request) {
	npID := r.URL.Query().Get("np_id")
	if npID == "" {
		writeErr(w, errBadRequest("np_id is required"))
		return
	}
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			writeErr(w, errBadRequest("invalid page"))
			return
		}
		page = p
	}
	titles, err := h.store.GetTrophyTitles(r.Context(), npID, uint32(page))
	if err != nil {
		writeErr(w, err)
		return
	}
	httputil.OK(w, titles)
}
