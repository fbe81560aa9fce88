package auth

import (
	"context"
	"testing"
	"time"
)

func TestSessionsRoundTrip(t *testing.T) {
	sessions := NewSessions(16, time.Hour)

	token, err := sessions.Start(Identity{UserID: "u1", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	id, ok := sessions.Lookup(token)
	if !ok {
		t.Fatal("token not found after Start")
	}
	if id.UserID != "u1" || id.DisplayName != "Alice" {
		t.Errorf("identity = %+v", id)
	}
}

func TestSessionsTokensAreUnique(t *testing.T) {
	sessions := NewSessions(16, time.Hour)
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		token, err := sessions.Start(Identity{UserID: "u1"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}

func TestSessionsEnd(t *testing.T) {
	sessions := NewSessions(16, time.Hour)
	token, _ := sessions.Start(Identity{UserID: "u1"})

	sessions.End(token)
	if _, ok := sessions.Lookup(token); ok {
		t.Error("token still valid after End")
	}
}

func TestSessionsExpiry(t *testing.T) {
	sessions := NewSessions(16, 20*time.Millisecond)
	token, _ := sessions.Start(Identity{UserID: "u1"})

	time.Sleep(40 * time.Millisecond)
	if _, ok := sessions.Lookup(token); ok {
		t.Error("token valid past TTL")
	}
	if n := sessions.CleanExpired(); n != 0 {
		// The failed Lookup already dropped the entry
		t.Errorf("CleanExpired = %d, want 0", n)
	}
}

func TestDevAuthenticator(t *testing.T) {
	dev := NewDev()

	url := dev.AuthCodeURL("xyz")
	if url != "/auth/callback?code=dev&state=xyz" {
		t.Errorf("AuthCodeURL = %q", url)
	}

	id, err := dev.Exchange(context.Background(), "dev")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if id.UserID != "dev-user" {
		t.Errorf("UserID = %q, want dev-user", id.UserID)
	}
}
