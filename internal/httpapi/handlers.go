// Package httpapi mounts the forum's HTTP/WebSocket surface on a
// chi.Router. Per spec.md §1/§4.6 this layer is kept deliberately
// thin: handlers deserialize, delegate to internal/forum,
// internal/cache, internal/store, internal/psnqueue and
// internal/talk, and render through internal/pkg/httputil using the
// §7 status-code mapping (internal/apierr.Render) — no business logic
// lives here.
package httpapi

import (
	"github.com/ignite/pixelforum/internal/cache"
	"github.com/ignite/pixelforum/internal/forum"
	"github.com/ignite/pixelforum/internal/psnqueue"
	"github.com/ignite/pixelforum/internal/store"
	"github.com/ignite/pixelforum/internal/talk"
)

// Handlers holds every collaborator the route table dispatches into.
type Handlers struct {
	forum *forum.Service
	talk  *talk.Service
	cache *cache.Store
	store *store.Pool
	psn   *psnqueue.Actor
	auth  Authenticator
}

// New builds the Handlers used to assemble the router.
func New(f *forum.Service, t *talk.Service, c *cache.Store, st *store.Pool, psn *psnqueue.Actor, auth Authenticator) *Handlers {
	return &Handlers{forum: f, talk: t, cache: c, store: st, psn: psn, auth: auth}
}
