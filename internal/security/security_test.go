package security

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndParseUserToken(t *testing.T) {
	token, err := IssueUserToken("test-secret", time.Hour, 42, "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := ParseUserToken("test-secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseUserToken_WrongSecret(t *testing.T) {
	token, err := IssueUserToken("right-secret", time.Hour, 1, "u")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseUserToken("wrong-secret", token); err == nil {
		t.Fatal("expected signature validation failure")
	}
}

func TestParseUserToken_Expired(t *testing.T) {
	token, err := IssueUserToken("s", -time.Minute, 1, "u")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseUserToken("s", token); err == nil {
		t.Fatal("expected expiry failure")
	}
}

func TestIssueUserToken_EmptySecret(t *testing.T) {
	if _, err := IssueUserToken("  ", time.Hour, 1, "u"); err == nil {
		t.Fatal("expected empty secret rejection")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected mismatch to fail")
	}
}

func TestAppKeyGeneration(t *testing.T) {
	raw, err := GenerateAppKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(raw, "rdk_") {
		t.Fatalf("expected rdk_ prefix, got %q", raw)
	}

	other, err := GenerateAppKey()
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}
	if raw == other {
		t.Fatal("keys must be unique")
	}

	hash := HashAppKey(raw)
	if len(hash) != 64 {
		t.Fatalf("expected hex sha-256, got %q", hash)
	}
	if hash != HashAppKey(raw) {
		t.Fatal("hash must be deterministic")
	}

	if prefix := KeyPrefix(raw); prefix != raw[:8] {
		t.Fatalf("unexpected prefix %q", prefix)
	}
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(16)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(s) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(s))
	}
	if _, err := GenerateRandomString(0); err == nil {
		t.Fatal("expected rejection of non-positive length")
	}
}
