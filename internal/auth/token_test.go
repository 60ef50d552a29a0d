package auth

import (
	"testing"

	"github.com/spec-kit/medcourse-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)

	token, expiresAt, err := tm.GenerateToken("user-1", domain.RoleInstructor)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if expiresAt.IsZero() {
		t.Fatal("expected expiry")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SubjectID != "user-1" {
		t.Fatalf("subject = %q", claims.SubjectID)
	}
	if claims.Role != domain.RoleInstructor {
		t.Fatalf("role = %q", claims.Role)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 15)
	verifier := NewTokenManager("secret-b", 15)

	token, _, err := issuer.GenerateToken("user-1", domain.RoleStudent)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)
	if _, err := tm.ParseToken("not-a-token"); err == nil {
		t.Fatal("expected parse failure")
	}
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(hashed, "s3cret-pass"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := ComparePassword(hashed, "wrong"); err == nil {
		t.Fatal("expected mismatch")
	}
}

func TestHashPasswordClampsInvalidCost(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass", 0)
	if err != nil {
		t.Fatalf("hash with zero cost: %v", err)
	}
	if err := ComparePassword(hashed, "s3cret-pass"); err != nil {
		t.Fatalf("compare: %v", err)
	}
}
