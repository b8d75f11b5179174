package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost balances login latency against offline cracking resistance
	// for stored admin credentials.
	BcryptCost     = 12
	MinPasswordLen = 8
	MaxPasswordLen = 128
)

var (
	placeholderOnce sync.Once
	placeholderHash []byte
)

// placeholder returns a valid bcrypt digest of a random value generated once
// per process. It is compared against supplied passwords for accounts that do
// not exist, so the unknown-account path costs the same as a real mismatch.
// The preimage is discarded, so the comparison can never succeed.
func placeholder() []byte {
	placeholderOnce.Do(func() {
		seed := make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			// rand.Read failing means the platform CSPRNG is broken; bcrypt
			// of a fixed value still keeps the timing profile intact.
			seed = []byte("placeholder-seed-entropy-unavailable")
		}
		hash, err := bcrypt.GenerateFromPassword(seed, BcryptCost)
		if err != nil {
			panic(fmt.Sprintf("bcrypt placeholder generation failed: %v", err))
		}
		placeholderHash = hash
	})
	return placeholderHash
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword checks a supplied password against a stored bcrypt hash.
// When storedHash is nil (unknown account) the comparison still runs, against
// a placeholder digest, so response latency does not reveal whether the
// account exists. Both branches go through the same bcrypt primitive.
func VerifyPassword(storedHash *string, password string) bool {
	hash := placeholder()
	if storedHash != nil && *storedHash != "" {
		hash = []byte(*storedHash)
	}

	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	return err == nil && storedHash != nil && *storedHash != ""
}

// GenerateSecret returns a base64-encoded 256-bit random value, used for
// bootstrap session secrets in development.
func GenerateSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

// ValidatePassword enforces minimum requirements for new admin passwords.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLen)
	}
	return nil
}
