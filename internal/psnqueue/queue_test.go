package psnqueue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/pixelforum/internal/cache"
	"github.com/ignite/pixelforum/internal/domain"
)

type fakeClient struct {
	profile domain.UserPSNProfile
	err     error
}

func (f *fakeClient) Authenticate(ctx context.Context, npsso, refreshToken *string) error {
	return f.err
}

func (f *fakeClient) GetProfile(ctx context.Context, onlineID string) (domain.UserPSNProfile, error) {
	return f.profile, f.err
}

func (f *fakeClient) GetTitles(ctx context.Context, onlineID string, offset uint32) (TitlesPage, error) {
	return TitlesPage{}, f.err
}

func (f *fakeClient) GetTrophySet(ctx context.Context, onlineID, npCommunicationID string) (TrophySetPage, error) {
	return TrophySetPage{}, f.err
}

func newTestCache(t *testing.T) *cache.Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.New(client)
}

func TestPushDedupesWithinTimeGate(t *testing.T) {
	a := New(&fakeClient{}, nil, newTestCache(t), nil)

	a.Push(Request{Kind: KindProfile, OnlineID: "alice"}, false)
	a.Push(Request{Kind: KindProfile, OnlineID: "alice"}, false)

	if got := a.Len(); got != 1 {
		t.Fatalf("expected the second identical request to be gated out, queue len=%d", got)
	}
}

func TestPushDoesNotGateUngatedKinds(t *testing.T) {
	a := New(&fakeClient{}, nil, newTestCache(t), nil)

	a.Push(Request{Kind: KindAuth}, false)
	a.Push(Request{Kind: KindAuth}, false)

	if got := a.Len(); got != 2 {
		t.Fatalf("expected Auth requests to never be time-gated, queue len=%d", got)
	}
}

func TestTickDispatchesProfileRequestIntoCache(t *testing.T) {
	c := newTestCache(t)
	client := &fakeClient{profile: domain.UserPSNProfile{OnlineID: "alice", NpID: "np1"}}
	a := New(client, nil, c, nil)

	a.Push(Request{Kind: KindProfile, OnlineID: "alice"}, false)
	a.tick(context.Background())

	got, err := c.GetPSNProfile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetPSNProfile: %v", err)
	}
	if got.NpID != "np1" {
		t.Fatalf("expected cached profile np_id=np1, got %+v", got)
	}
	if a.Len() != 0 {
		t.Fatalf("expected queue drained after tick, len=%d", a.Len())
	}
}

type reportRecorder struct {
	kind string
	err  error
}

func (r *reportRecorder) Report(kind string, err error) {
	r.kind = kind
	r.err = err
}

func TestTickReportsFailureAndDropsRequest(t *testing.T) {
	c := newTestCache(t)
	client := &fakeClient{err: context.DeadlineExceeded}
	rec := &reportRecorder{}
	a := New(client, nil, c, rec)

	a.Push(Request{Kind: KindProfile, OnlineID: "bob"}, false)
	a.tick(context.Background())

	if rec.err == nil {
		t.Fatal("expected the reporter to receive the failure")
	}
	if a.Len() != 0 {
		t.Fatalf("expected the failed request dropped, not requeued, len=%d", a.Len())
	}
}
