package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// PasswordHasher hashes plaintext credentials and verifies them against a
// stored digest.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// Ensure BcryptHasher implements PasswordHasher
var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher with the default cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcryptCost}
}

// Hash generates a salted digest from a plaintext password.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Compare reports whether plaintext matches digest. It fails closed: a
// corrupted digest is a mismatch, never a panic.
func (h *BcryptHasher) Compare(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
