package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/pixelforum/internal/authimpl"
	"github.com/ignite/pixelforum/internal/forum"
	"github.com/ignite/pixelforum/internal/store"
)

func newTestHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	pool := &store.Pool{DB: conn}
	f := forum.New(pool, nil, nil, nil)
	auth := authimpl.New("test-secret", 4)
	return New(f, nil, nil, pool, nil, auth), mock
}

func TestLoginSucceedsAndIssuesToken(t *testing.T) {
	h, mock := newTestHandlers(t)

	authForHash := authimpl.New("test-secret", 4)
	hashed, err := authForHash.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "hashed_password", "avatar_url", "signature",
		"show_email", "privilege", "created_at", "updated_at",
	}).AddRow(7, "alice", "alice@example.com", hashed, "", "", false, 1, now, now)

	mock.ExpectQuery("SELECT id, username, email, hashed_password").
		WithArgs("alice").
		WillReturnRows(rows)

	body, _ := json.Marshal(loginBody{Username: "alice", Password: "correct horse"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a non-empty token")
	}

	if uid, priv, err := h.auth.Authenticate(req.Context(), resp.Token); err != nil || uid != 7 || priv != 1 {
		t.Fatalf("expected issued token to authenticate as uid=7 priv=1, got uid=%d priv=%d err=%v", uid, priv, err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h, mock := newTestHandlers(t)

	authForHash := authimpl.New("test-secret", 4)
	hashed, _ := authForHash.HashPassword("correct horse")

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "hashed_password", "avatar_url", "signature",
		"show_email", "privilege", "created_at", "updated_at",
	}).AddRow(7, "alice", "alice@example.com", hashed, "", "", false, 1, now, now)

	mock.ExpectQuery("SELECT id, username, email, hashed_password").
		WithArgs("alice").
		WillReturnRows(rows)

	body, _ := json.Marshal(loginBody{Username: "alice", Password: "wrong password"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong password, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLoginRejectsBlockedAccountBeforeCheckingPassword(t *testing.T) {
	h, mock := newTestHandlers(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "hashed_password", "avatar_url", "signature",
		"show_email", "privilege", "created_at", "updated_at",
	}).AddRow(7, "alice", "alice@example.com", "irrelevant", "", "", false, 0, now, now)

	mock.ExpectQuery("SELECT id, username, email, hashed_password").
		WithArgs("alice").
		WillReturnRows(rows)

	body, _ := json.Marshal(loginBody{Username: "alice", Password: "anything"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for blocked account, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	h, mock := newTestHandlers(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "hashed_password", "avatar_url", "signature",
		"show_email", "privilege", "created_at", "updated_at",
	}).AddRow(1, "alice", "alice@example.com", "x", "", "", false, 1, now, now)

	mock.ExpectQuery("SELECT id, username, email, hashed_password").
		WithArgs("alice").
		WillReturnRows(rows)

	body, _ := json.Marshal(registerBody{Username: "alice", Email: "new@example.com", Password: "pw"})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d: %s", rec.Code, rec.Body.String())
	}
}
