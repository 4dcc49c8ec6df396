package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ignite/pixelforum/internal/apierr"
)

type fakeAuthenticator struct {
	userID    uint32
	privilege uint32
	authErr   error
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) (uint32, uint32, error) {
	if f.authErr != nil {
		return 0, 0, f.authErr
	}
	if token != "valid-token" {
		return 0, 0, apierr.ErrUnauthorized
	}
	return f.userID, f.privilege, nil
}

func (f *fakeAuthenticator) HashPassword(password string) (string, error) { return "hashed:" + password, nil }

func (f *fakeAuthenticator) VerifyPassword(password, hashed string) error {
	if hashed != "hashed:"+password {
		return apierr.ErrWrongPassword
	}
	return nil
}

func (f *fakeAuthenticator) IssueToken(userID, privilege uint32) (string, error) {
	return "valid-token", nil
}

func TestRequireAuthRejectsMissingBearerToken(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	mw := RequireAuth(&fakeAuthenticator{})
	req := httptest.NewRequest(http.MethodGet, "/user/1", nil)
	rec := httptest.NewRecorder()

	mw(next).ServeHTTP(rec, req)

	if called {
		t.Fatal("expected next handler not to run without a bearer token")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	mw := RequireAuth(&fakeAuthenticator{})
	req := httptest.NewRequest(http.MethodGet, "/user/1", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })).ServeHTTP(rec, req)

	if called {
		t.Fatal("expected next handler not to run for an invalid token")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAuthStampsIdentityInContext(t *testing.T) {
	mw := RequireAuth(&fakeAuthenticator{userID: 42, privilege: 9})
	req := httptest.NewRequest(http.MethodGet, "/user/1", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()

	var gotUID uint32
	var gotPriv uint32
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, ok = userIDFromCtx(r.Context())
		gotPriv = privilegeFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	mw(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !ok || gotUID != 42 {
		t.Fatalf("expected userID 42 in context, got %d (ok=%v)", gotUID, ok)
	}
	if gotPriv != 9 {
		t.Fatalf("expected privilege 9 in context, got %d", gotPriv)
	}
}

func TestBearerTokenExtraction(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := bearerToken(req); got != "" {
		t.Fatalf("expected empty token for missing header, got %q", got)
	}

	req.Header.Set("Authorization", "Basic xyz")
	if got := bearerToken(req); got != "" {
		t.Fatalf("expected empty token for non-Bearer scheme, got %q", got)
	}

	req.Header.Set("Authorization", "Bearer abc123")
	if got := bearerToken(req); got != "abc123" {
		t.Fatalf("expected %q, got %q", "abc123", got)
	}
}
