package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestSessionAuth_IssueAndVerify(t *testing.T) {
	a, err := NewSessionAuth("test-secret", 0)
	if err != nil {
		t.Fatalf("Failed to create session auth: %v", err)
	}
	if a.Expiry() != DefaultSessionExpiry {
		t.Errorf("Expected default expiry %v, got %v", DefaultSessionExpiry, a.Expiry())
	}

	session, err := a.Issue("507f1f77bcf86cd799439011", "a@b.com", "Ada", "mentor")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	if session.TokenID == "" {
		t.Error("Expected token ID to be set")
	}
	if d := time.Until(session.ExpiresAt); d < 6*24*time.Hour || d > 7*24*time.Hour {
		t.Errorf("Expected expiry about 7 days out, got %v", d)
	}

	claims, err := a.Verify(session.Token)
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if claims.Email != "a@b.com" || claims.Name != "Ada" || claims.Role != "mentor" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
	if claims.ID != session.TokenID {
		t.Errorf("Expected jti %s, got %s", session.TokenID, claims.ID)
	}
}

func TestSessionAuth_RejectsBadTokens(t *testing.T) {
	a, _ := NewSessionAuth("test-secret", time.Hour)
	other, _ := NewSessionAuth("other-secret", time.Hour)

	foreign, err := other.Issue("507f1f77bcf86cd799439011", "a@b.com", "Ada", "mentor")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	expired, _ := NewSessionAuth("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue("507f1f77bcf86cd799439011", "a@b.com", "Ada", "mentor")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to build unsigned token: %v", err)
	}

	valid, _ := a.Issue("507f1f77bcf86cd799439011", "a@b.com", "Ada", "mentor")
	tampered := valid.Token[:len(valid.Token)-2] + flip(valid.Token[len(valid.Token)-2:])

	tests := map[string]string{
		"empty":         "",
		"malformed":     "not-a-jwt",
		"bad signature": foreign.Token,
		"expired":       stale.Token,
		"alg none":      noneToken,
		"tampered":      tampered,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.Verify(token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewSessionAuth_EmptySecret(t *testing.T) {
	if _, err := NewSessionAuth("", time.Hour); err == nil {
		t.Fatal("Expected error for empty secret")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse 1")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$") {
		t.Errorf("Expected argon2id hash, got %s", hash)
	}
	if NeedsRehash(hash) {
		t.Error("Argon2id hash should not need rehash")
	}

	ok, err := VerifyPassword(hash, "correct horse 1")
	if err != nil || !ok {
		t.Errorf("Expected password to verify, got ok=%v err=%v", ok, err)
	}

	ok, err = VerifyPassword(hash, "wrong")
	if err != nil || ok {
		t.Errorf("Expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyPassword_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to create bcrypt hash: %v", err)
	}

	ok, err := VerifyPassword(string(legacy), "hunter22")
	if err != nil || !ok {
		t.Errorf("Expected legacy password to verify, got ok=%v err=%v", ok, err)
	}
	ok, err = VerifyPassword(string(legacy), "hunter23")
	if err != nil || ok {
		t.Errorf("Expected legacy mismatch, got ok=%v err=%v", ok, err)
	}
	if !NeedsRehash(string(legacy)) {
		t.Error("Expected bcrypt hash to need rehash")
	}

	if _, err := VerifyPassword("plaintext", "plaintext"); err == nil {
		t.Error("Expected error for unknown hash format")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]bool{
		"short1":      false,
		"longenough":  false,
		"12345678":    false,
		"longenough1": true,
	}
	for pw, want := range cases {
		if got := ValidatePassword(pw) == nil; got != want {
			t.Errorf("ValidatePassword(%q) valid=%v, want %v", pw, got, want)
		}
	}
}

func flip(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
	}
	return string(b)
}
