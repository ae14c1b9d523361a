// Package auth provides password hashing and identity token utilities.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt truncates anything past 72 bytes; reject instead of silently hashing
// a prefix.
const maxPasswordLen = 72

// HashPassword creates a salted bcrypt hash of the plaintext with the given
// work factor. The salt is generated internally and embedded in the digest.
func HashPassword(plaintext string, cost int) (string, error) {
	if len(plaintext) > maxPasswordLen {
		return "", fmt.Errorf("password exceeds %d bytes", maxPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored digest.
// Fails closed: a malformed digest returns false rather than an error.
// bcrypt's compare is constant-time over the hash bytes.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
