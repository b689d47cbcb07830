package security

import (
	"strings"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		pw, err := GenerateTempPassword(12)
		if err != nil {
			t.Fatalf("GenerateTempPassword: %v", err)
		}
		if len(pw) != 12 {
			t.Errorf("length = %d, want 12", len(pw))
		}
		for _, ambiguous := range []string{"l", "1", "I", "0", "O"} {
			if strings.Contains(pw, ambiguous) {
				t.Errorf("password %q contains ambiguous character %q", pw, ambiguous)
			}
		}
		if seen[pw] {
			t.Errorf("duplicate password generated: %q", pw)
		}
		seen[pw] = true
	}
}

func TestCSRFTokens(t *testing.T) {
	gen := NewCSRFGenerator("test-secret")

	token, err := gen.GenerateToken("session-abc")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	again, err := gen.GenerateToken("session-abc")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token != again {
		t.Error("tokens for same session differ")
	}

	if !gen.ValidateToken("session-abc", token) {
		t.Error("valid token rejected")
	}
	if gen.ValidateToken("session-other", token) {
		t.Error("token accepted for wrong session")
	}
	if gen.ValidateToken("session-abc", "forged") {
		t.Error("forged token accepted")
	}
	if gen.ValidateToken("", token) {
		t.Error("empty session accepted")
	}

	other := NewCSRFGenerator("different-secret")
	if other.ValidateToken("session-abc", token) {
		t.Error("token accepted under different secret")
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("jwt-secret", "daycaremoments")

	token, err := issuer.IssueResetToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}

	userID, err := issuer.VerifyResetToken(token)
	if err != nil {
		t.Fatalf("VerifyResetToken: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want user-1", userID)
	}
}

func TestResetTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("jwt-secret", "daycaremoments")

	token, err := issuer.IssueResetToken("user-1", -time.Minute)
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}
	if _, err := issuer.VerifyResetToken(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestResetTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("jwt-secret", "daycaremoments")
	other := NewTokenIssuer("other-secret", "daycaremoments")

	token, err := issuer.IssueResetToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}
	if _, err := other.VerifyResetToken(token); err == nil {
		t.Error("token accepted under wrong secret")
	}
}

func TestRoomTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("jwt-secret", "daycaremoments")

	token, err := issuer.IssueRoomToken("user-2", "room-9", 15*time.Minute)
	if err != nil {
		t.Fatalf("IssueRoomToken: %v", err)
	}

	userID, roomID, err := issuer.VerifyRoomToken(token)
	if err != nil {
		t.Fatalf("VerifyRoomToken: %v", err)
	}
	if userID != "user-2" || roomID != "room-9" {
		t.Errorf("got (%q, %q), want (user-2, room-9)", userID, roomID)
	}
}

func TestRoomTokenRejectsResetToken(t *testing.T) {
	issuer := NewTokenIssuer("jwt-secret", "daycaremoments")

	token, err := issuer.IssueResetToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}
	if _, _, err := issuer.VerifyRoomToken(token); err == nil {
		t.Error("reset token accepted as room token")
	}
}
