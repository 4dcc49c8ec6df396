package psnqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ignite/pixelforum/internal/apierr"
	"github.com/ignite/pixelforum/internal/cache"
	"github.com/ignite/pixelforum/internal/domain"
	"github.com/ignite/pixelforum/internal/logger"
	"github.com/ignite/pixelforum/internal/store"
)

// ReqInterval is how often the actor dispatches the next queued
// request — the PSN API's own rate limit, not merely a polling period.
const ReqInterval = 3 * time.Second

// Time gates: how often a single account may trigger a sync of a given
// kind. Each is keyed by Request.entryKey.
const (
	ProfileTimeGate      = 900 * time.Second
	TrophyTitlesTimeGate = 900 * time.Second
	TrophySetTimeGate    = 900 * time.Second
)

// Reporter receives errors the dispatch loop can't otherwise surface.
type Reporter interface {
	Report(kind string, err error)
}

// Actor is the single-consumer PSN request queue. The queue and time
// gates are guarded by mu, so Push and Len are safe to call
// concurrently; Run is the one goroutine that pops and dispatches.
type Actor struct {
	client Client
	store  *store.Pool
	cache  *cache.Store

	mu       sync.Mutex
	queue    []Request
	timeGate map[string]time.Time

	reporter Reporter
}

// New builds an Actor. client may start with no authenticated session;
// an Auth request establishes one before any other request kind can
// succeed.
func New(client Client, st *store.Pool, c *cache.Store, reporter Reporter) *Actor {
	return &Actor{
		client:   client,
		store:    st,
		cache:    c,
		timeGate: make(map[string]time.Time),
		reporter: reporter,
	}
}

// Push enqueues req if it passes the time gate (Auth/Activation always
// pass — see shouldAddQueue), pushing to the front when front is true
// (used for admin-privileged requests that shouldn't wait behind a
// backlog of ordinary syncs).
func (a *Actor) Push(req Request, front bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.shouldAddQueue(req) {
		return
	}
	a.updateTimeStamp(req)

	if front {
		a.queue = append([]Request{req}, a.queue...)
	} else {
		a.queue = append(a.queue, req)
	}
}

// Len reports the current queue depth, for metrics and tests.
func (a *Actor) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

func (a *Actor) shouldAddQueue(req Request) bool {
	gate, gated := timeGateFor(req.Kind)
	if !gated {
		return true
	}
	return !a.isInTimeGate(req.entryKey(), gate)
}

func (a *Actor) isInTimeGate(entry string, gate time.Duration) bool {
	last, ok := a.timeGate[entry]
	if !ok {
		return false
	}
	return time.Since(last) < gate
}

func (a *Actor) updateTimeStamp(req Request) {
	entry := req.entryKey()
	if entry == "" {
		return
	}
	a.timeGate[entry] = time.Now()
}

func timeGateFor(kind RequestKind) (time.Duration, bool) {
	switch kind {
	case KindProfile:
		return ProfileTimeGate, true
	case KindTrophyTitles:
		return TrophyTitlesTimeGate, true
	case KindTrophySet:
		return TrophySetTimeGate, true
	default:
		return 0, false
	}
}

// Run pops and dispatches one request every ReqInterval until ctx is
// cancelled. Unlike internal/reconcile's FailedWriter, a failed
// request is dropped rather than requeued — PSN requests are
// time-sensitive syncs, not must-eventually-succeed writes.
func (a *Actor) Run(ctx context.Context) {
	ticker := time.NewTicker(ReqInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Actor) tick(ctx context.Context) {
	a.mu.Lock()
	if len(a.queue) == 0 {
		a.mu.Unlock()
		return
	}
	req := a.queue[0]
	a.queue = a.queue[1:]
	a.mu.Unlock()

	if err := a.handleRequest(ctx, req); err != nil {
		logger.Error("psn request failed", "kind", req.Kind.String(), "online_id", req.OnlineID, "error", err.Error())
		if a.reporter != nil {
			a.reporter.Report("http_client", err)
		}
	}
}

func (a *Actor) handleRequest(ctx context.Context, req Request) error {
	switch req.Kind {
	case KindProfile:
		return a.handleProfile(ctx, req.OnlineID)
	case KindTrophyTitles:
		titles, err := a.handleTrophyTitles(ctx, req.OnlineID)
		if err != nil {
			return err
		}
		return a.store.UpsertTrophyTitles(ctx, titles)
	case KindTrophySet:
		set, err := a.handleTrophySet(ctx, req.OnlineID, req.NpCommunicationID)
		if err != nil {
			return err
		}
		return a.upsertTrophySetPreserving(ctx, set)
	case KindAuth:
		return a.client.Authenticate(ctx, req.NPSSO, req.RefreshToken)
	case KindActivation:
		return a.handleActivation(ctx, req.UserID, req.OnlineID, req.Code)
	default:
		return fmt.Errorf("psnqueue: unknown request kind %v", req.Kind)
	}
}

func (a *Actor) handleProfile(ctx context.Context, onlineID string) error {
	profile, err := a.client.GetProfile(ctx, onlineID)
	if err != nil {
		return err
	}
	return a.cache.PutPSNProfile(ctx, profile)
}

func (a *Actor) handleActivation(ctx context.Context, userID *uint32, onlineID, code string) error {
	profile, err := a.client.GetProfile(ctx, onlineID)
	if err != nil {
		return err
	}
	if profile.AboutMe != code {
		return apierr.ErrUnauthorized
	}
	profile.UserID = userID
	return a.cache.PutPSNProfile(ctx, profile)
}

// handleTrophyTitles fetches every page of an account's trophy
// titles, verifying the account's identity hasn't changed between the
// first and last PSN call (the API call itself takes long enough,
// across many pages, that a np_id/online_id mismatch would mean the
// account was relinked mid-fetch).
func (a *Actor) handleTrophyTitles(ctx context.Context, onlineID string) ([]domain.UserTrophyTitle, error) {
	before, err := a.client.GetProfile(ctx, onlineID)
	if err != nil {
		return nil, err
	}

	first, err := a.client.GetTitles(ctx, onlineID, 0)
	if err != nil {
		return nil, err
	}

	titles := append([]domain.UserTrophyTitle{}, first.Titles...)
	pages := first.TotalResults / 100
	for i := uint32(0); i < pages; i++ {
		page, err := a.client.GetTitles(ctx, onlineID, (i+1)*100)
		if err != nil {
			continue
		}
		titles = append(titles, page.Titles...)
	}

	after, err := a.client.GetProfile(ctx, onlineID)
	if err != nil {
		return nil, err
	}
	if before.NpID != after.NpID || before.OnlineID != after.OnlineID {
		return nil, apierr.ErrUnauthorized
	}

	for i := range titles {
		titles[i].NpID = after.NpID
	}
	return titles, nil
}

func (a *Actor) handleTrophySet(ctx context.Context, onlineID, npCommunicationID string) (*domain.UserTrophySet, error) {
	before, err := a.client.GetProfile(ctx, onlineID)
	if err != nil {
		return nil, err
	}
	page, err := a.client.GetTrophySet(ctx, onlineID, npCommunicationID)
	if err != nil {
		return nil, err
	}
	after, err := a.client.GetProfile(ctx, onlineID)
	if err != nil {
		return nil, err
	}
	if before.NpID != after.NpID || before.OnlineID != after.OnlineID {
		return nil, apierr.ErrUnauthorized
	}
	return &domain.UserTrophySet{
		NpID:              after.NpID,
		NpCommunicationID: npCommunicationID,
		IsVisible:         true,
		Trophies:          page.Trophies,
	}, nil
}
