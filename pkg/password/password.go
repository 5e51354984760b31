// Package password wraps bcrypt hashing for stored user credentials.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost matches the original deployment; bcrypt's default of 10 is the floor.
const Cost = 12

// Hash derives a bcrypt hash from a plaintext password.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored hash.
func Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
