package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mihindugunarathne/FED-backend/internal/identity"
)

var testSecret = []byte("test-signing-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestJWTVerifier(t *testing.T) {
	t.Run("returns principal for valid token", func(t *testing.T) {
		verifier := identity.NewJWTVerifier(testSecret)
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "user-1",
			"role": "admin",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		principal, err := verifier.Verify(context.Background(), token)

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if principal.UserID != "user-1" {
			t.Errorf("expected user ID user-1, got %s", principal.UserID)
		}

		if !principal.IsAdmin() {
			t.Error("expected admin principal")
		}
	})

	t.Run("principal without role claim is not admin", func(t *testing.T) {
		verifier := identity.NewJWTVerifier(testSecret)
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		principal, err := verifier.Verify(context.Background(), token)

		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if principal.IsAdmin() {
			t.Error("expected non-admin principal")
		}
	})

	t.Run("rejects token signed with a different secret", func(t *testing.T) {
		verifier := identity.NewJWTVerifier(testSecret)
		token := signToken(t, []byte("wrong-secret"), jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := verifier.Verify(context.Background(), token)

		if !errors.Is(err, identity.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got: %v", err)
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		verifier := identity.NewJWTVerifier(testSecret)
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		_, err := verifier.Verify(context.Background(), token)

		if !errors.Is(err, identity.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got: %v", err)
		}
	})

	t.Run("rejects token without subject", func(t *testing.T) {
		verifier := identity.NewJWTVerifier(testSecret)
		token := signToken(t, testSecret, jwt.MapClaims{
			"role": "admin",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})

		_, err := verifier.Verify(context.Background(), token)

		if !errors.Is(err, identity.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got: %v", err)
		}
	})

	t.Run("rejects unsigned token", func(t *testing.T) {
		verifier := identity.NewJWTVerifier(testSecret)
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to build unsigned token: %v", err)
		}

		if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, identity.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got: %v", err)
		}
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		verifier := identity.NewJWTVerifier(testSecret)

		if _, err := verifier.Verify(context.Background(), "not-a-token"); !errors.Is(err, identity.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got: %v", err)
		}
	})
}
