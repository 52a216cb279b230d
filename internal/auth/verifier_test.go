package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validClaims(userID string) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UserID: userID,
	}
}

func TestVerifyValidToken(t *testing.T) {
	v := NewJWTVerifier(testSecret, "")
	token := signToken(t, testSecret, validClaims("alice"))

	identity, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if identity.UserID != "alice" {
		t.Errorf("expected user alice, got %s", identity.UserID)
	}
}

func TestVerifyMissingToken(t *testing.T) {
	v := NewJWTVerifier(testSecret, "")

	_, err := v.Verify("")
	if !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	v := NewJWTVerifier(testSecret, "")
	token := signToken(t, "other-secret", validClaims("alice"))

	_, err := v.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	v := NewJWTVerifier(testSecret, "")
	claims := validClaims("alice")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := signToken(t, testSecret, claims)

	_, err := v.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	v := NewJWTVerifier(testSecret, "")

	_, err := v.Verify("not-a-jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyIssuerMismatch(t *testing.T) {
	v := NewJWTVerifier(testSecret, "relay")
	claims := validClaims("alice")
	claims.Issuer = "someone-else"
	token := signToken(t, testSecret, claims)

	_, err := v.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifySubjectFallback(t *testing.T) {
	v := NewJWTVerifier(testSecret, "")
	claims := validClaims("alice")
	claims.UserID = "" // only the registered subject is set
	token := signToken(t, testSecret, claims)

	identity, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if identity.UserID != "alice" {
		t.Errorf("expected subject fallback to alice, got %s", identity.UserID)
	}
}

func TestVerifyNoIdentity(t *testing.T) {
	v := NewJWTVerifier(testSecret, "")
	claims := validClaims("")
	token := signToken(t, testSecret, claims)

	_, err := v.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for empty identity, got %v", err)
	}
}
