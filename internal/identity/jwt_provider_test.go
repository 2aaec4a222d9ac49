package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func issueToken(t *testing.T, secret, issuer, subject, email, name string, expiresIn time.Duration) string {
	t.Helper()
	claims := idTokenClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestJWTProvider_VerifyIDToken(t *testing.T) {
	provider := NewJWTProvider(testSecret, "test-issuer", "")

	t.Run("valid token yields identity", func(t *testing.T) {
		token := issueToken(t, testSecret, "test-issuer", "u-1", "Taro@Example.com", " Taro Yamada ", time.Hour)
		id, err := provider.VerifyIDToken(context.Background(), token)
		if err != nil {
			t.Fatalf("VerifyIDToken failed: %v", err)
		}
		if id.Subject != "u-1" {
			t.Errorf("expected subject u-1, got %q", id.Subject)
		}
		if id.Email != "taro@example.com" {
			t.Errorf("expected lowercased email, got %q", id.Email)
		}
		if id.DisplayName != "Taro Yamada" {
			t.Errorf("expected trimmed name, got %q", id.DisplayName)
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		token := issueToken(t, "other-secret", "test-issuer", "u-1", "a@example.com", "A", time.Hour)
		if _, err := provider.VerifyIDToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("wrong issuer rejected", func(t *testing.T) {
		token := issueToken(t, testSecret, "other-issuer", "u-1", "a@example.com", "A", time.Hour)
		if _, err := provider.VerifyIDToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		token := issueToken(t, testSecret, "test-issuer", "u-1", "a@example.com", "A", -time.Hour)
		if _, err := provider.VerifyIDToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("empty token rejected", func(t *testing.T) {
		if _, err := provider.VerifyIDToken(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("missing subject rejected", func(t *testing.T) {
		token := issueToken(t, testSecret, "test-issuer", "", "a@example.com", "A", time.Hour)
		if _, err := provider.VerifyIDToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestJWTProvider_SetDisabled(t *testing.T) {
	t.Run("posts account state", func(t *testing.T) {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		provider := NewJWTProvider(testSecret, "test-issuer", server.URL)
		if err := provider.SetDisabled(context.Background(), "u-1", true); err != nil {
			t.Fatalf("SetDisabled failed: %v", err)
		}
		if gotPath != "/accounts/u-1" {
			t.Errorf("unexpected path %q", gotPath)
		}
	})

	t.Run("provider error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		provider := NewJWTProvider(testSecret, "test-issuer", server.URL)
		if err := provider.SetDisabled(context.Background(), "u-1", true); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("no admin endpoint is a no-op", func(t *testing.T) {
		provider := NewJWTProvider(testSecret, "test-issuer", "")
		if err := provider.SetDisabled(context.Background(), "u-1", true); err != nil {
			t.Fatalf("expected no-op, got %v", err)
		}
	})
}
