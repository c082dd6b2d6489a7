package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", "splitmyexpenses", 15*time.Minute, 24*time.Hour, time.Hour)
}

// TestTokenPairRoundTrip checks issued tokens parse back with the right type
// and subject.
func TestTokenPairRoundTrip(t *testing.T) {
	manager := newTestManager()
	userID := uuid.New()
	refreshID := uuid.New()

	pair, err := manager.NewTokenPair(userID, refreshID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, claims.Subject)
	}

	claims, err = manager.ParseRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.ID != refreshID.String() {
		t.Fatalf("expected token id %s, got %s", refreshID, claims.ID)
	}
}

// TestTokenTypeMismatch checks a refresh token is rejected as access token
// and vice versa.
func TestTokenTypeMismatch(t *testing.T) {
	manager := newTestManager()

	pair, err := manager.NewTokenPair(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := manager.ParseAccessToken(pair.RefreshToken); err == nil {
		t.Fatal("expected refresh token to fail access parsing")
	}
	if _, err := manager.ParseRefreshToken(pair.AccessToken); err == nil {
		t.Fatal("expected access token to fail refresh parsing")
	}
}

// TestVerifyToken checks the email verification token round trip and type
// isolation.
func TestVerifyToken(t *testing.T) {
	manager := newTestManager()
	userID := uuid.New()

	token, err := manager.NewVerifyToken(userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseVerifyToken(token)
	if err != nil {
		t.Fatalf("parse verify: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, claims.Subject)
	}

	if _, err := manager.ParseAccessToken(token); err == nil {
		t.Fatal("expected verify token to fail access parsing")
	}
}

// TestTokenHash checks the refresh token hash comparison.
func TestTokenHash(t *testing.T) {
	hash := HashToken("some-token")
	if !CompareTokenHash(hash, "some-token") {
		t.Fatal("expected hash to match")
	}
	if CompareTokenHash(hash, "other-token") {
		t.Fatal("expected hash mismatch")
	}
}
