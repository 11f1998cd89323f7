package token

import (
	"errors"
	"testing"
	"time"
)

var secret = []byte("test-secret")

func TestIssueVerifyRoundTrip(t *testing.T) {
	signed, err := Issue("user-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := Verify(signed, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1 got %s", userID)
	}
}

func TestVerifyExpired(t *testing.T) {
	signed, err := Issue("user-1", secret, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := Verify(signed, secret); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := Issue("user-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := Verify(signed, []byte("other-secret")); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid got %v", err)
	}
}

func TestExpiresAtWithoutVerification(t *testing.T) {
	signed, err := Issue("user-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expiresAt, err := ExpiresAt(signed)
	if err != nil {
		t.Fatalf("expires at: %v", err)
	}

	want := time.Now().Add(time.Hour)
	if diff := expiresAt.Sub(want); diff > time.Minute || diff < -time.Minute {
		t.Fatalf("expiry off by %v", diff)
	}
}

func TestExpiresAtGarbage(t *testing.T) {
	if _, err := ExpiresAt("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
