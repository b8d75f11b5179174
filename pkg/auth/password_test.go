package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	password := "CorrectHorse9!"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "" || hash == password {
		t.Error("hash should be non-empty and differ from the plaintext")
	}

	if !VerifyPassword(&hash, password) {
		t.Error("correct password should verify")
	}

	if VerifyPassword(&hash, "wrong-password") {
		t.Error("wrong password should not verify")
	}
}

func TestHashPasswordEmptyRejected(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}

// An unknown account (nil hash) must never verify, but the call still has to
// go through the same bcrypt comparison as a real mismatch.
func TestVerifyPasswordUnknownAccount(t *testing.T) {
	if VerifyPassword(nil, "anything") {
		t.Error("nil stored hash should never verify")
	}

	empty := ""
	if VerifyPassword(&empty, "anything") {
		t.Error("empty stored hash should never verify")
	}
}

func TestPlaceholderIsValidBcrypt(t *testing.T) {
	hash := placeholder()

	cost, err := bcrypt.Cost(hash)
	if err != nil {
		t.Fatalf("placeholder is not a valid bcrypt digest: %v", err)
	}
	if cost != BcryptCost {
		t.Errorf("placeholder cost = %d, want %d", cost, BcryptCost)
	}

	// Comparison against the placeholder must run to completion (a cost
	// mismatch error, not a parse error) for any supplied password.
	err = bcrypt.CompareHashAndPassword(hash, []byte("some password"))
	if err == nil {
		t.Error("placeholder comparison should never succeed")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		shouldFail bool
	}{
		{name: "acceptable", password: "LongEnough1!", shouldFail: false},
		{name: "too short", password: "short", shouldFail: true},
		{name: "too long", password: strings.Repeat("a", 129), shouldFail: true},
		{name: "exactly minimum", password: "12345678", shouldFail: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.shouldFail && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.shouldFail && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}
