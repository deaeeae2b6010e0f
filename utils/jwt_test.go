package utils

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("user-1", "alice", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id, err := ExtractIDFromToken(tok)
	if err != nil || id != "user-1" {
		t.Fatalf("extract: %q %v", id, err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, _ := GenerateToken("user-1", "alice", -time.Minute)
	if _, err := ExtractIDFromToken(tok); err == nil {
		t.Fatal("expired token should not validate")
	}
}
