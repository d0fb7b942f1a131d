// Package password implements one-way hashing and verification of access
// codes.
//
// GetHash produces a bcrypt hash for safe storage.
// CompareHash checks a stored bcrypt hash against an entered code.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GetHash takes a plaintext access code and returns its bcrypt hash.
func GetHash(plaintext string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash compares a bcrypt hash with an entered code.
//
// Returns nil when the code matches the hash.
func CompareHash(originalHash, external string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(external)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Bcrypt satisfies the hasher interface of the subscription service.
type Bcrypt struct{}

// Hash implements the one-way hashing of a credential field.
func (Bcrypt) Hash(plaintext string) (string, error) {
	return GetHash(plaintext)
}
