package authimpl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignite/pixelforum/internal/apierr"
)

func TestIssueTokenThenAuthenticateRoundTrip(t *testing.T) {
	a := New("secret", 4)

	token, err := a.IssueToken(42, 9)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	uid, priv, err := a.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if uid != 42 || priv != 9 {
		t.Fatalf("expected uid=42 priv=9, got uid=%d priv=%d", uid, priv)
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	a := New("secret-one", 4)
	token, err := a.IssueToken(1, 1)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	other := New("secret-two", 4)
	if _, _, err := other.Authenticate(context.Background(), token); !errors.Is(err, apierr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for a token signed with a different secret, got %v", err)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	a := New("secret", 4)

	c := claims{
		UserID:    5,
		Privilege: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * tokenLifetime)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, _, err := a.Authenticate(context.Background(), signed); !errors.Is(err, apierr.ErrAuthTimeout) {
		t.Fatalf("expected ErrAuthTimeout for an expired token, got %v", err)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	a := New("secret", 4)

	hashed, err := a.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "correct horse battery staple" {
		t.Fatal("expected the stored value to be a digest, not the plaintext")
	}

	if err := a.VerifyPassword("correct horse battery staple", hashed); err != nil {
		t.Fatalf("VerifyPassword with correct password: %v", err)
	}
	if err := a.VerifyPassword("wrong password", hashed); !errors.Is(err, apierr.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword for a mismatched password, got %v", err)
	}
}

func TestNewFallsBackToDefaultCostBelowMinimum(t *testing.T) {
	a := New("secret", 1)
	if a.hashRounds != bcrypt.DefaultCost {
		t.Fatalf("expected hashRounds to fall back to bcrypt.DefaultCost (%d), got %d", bcrypt.DefaultCost, a.hashRounds)
	}
}
