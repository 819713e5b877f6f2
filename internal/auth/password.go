// Package auth implements the password derivation shared by the admin CLI
// and the user store. Hash and salt are stored as separate hex strings; the
// PBKDF2 input salt is the hex string itself, so records written by earlier
// tooling against the same database verify unchanged.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 100000
	keyLength  = 32
	saltLength = 16
)

// HashPassword derives a PBKDF2-SHA256 hash with a fresh random salt.
// Both return values are hex-encoded.
func HashPassword(password string) (hash, salt string, err error) {
	raw := make([]byte, saltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	salt = hex.EncodeToString(raw)
	return HashPasswordWithSalt(password, salt), salt, nil
}

// HashPasswordWithSalt derives the hex-encoded hash for a password and an
// existing hex-encoded salt.
func HashPasswordWithSalt(password, salt string) string {
	derived := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha256.New)
	return hex.EncodeToString(derived)
}

// Verify reports whether candidate derives to the stored hash under the
// stored salt, in constant time.
func Verify(candidate, hash, salt string) bool {
	derived := HashPasswordWithSalt(candidate, salt)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(hash)) == 1
}
