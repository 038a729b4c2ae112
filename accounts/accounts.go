// Package accounts defines the Account record and the credential hashing
// primitives used by the authentication service.
package accounts

import (
	"golang.org/x/crypto/bcrypt"
)

// Account represents one registered identity. Username is unique across all
// accounts and immutable after creation. CredentialToken holds the currently
// valid signed session token; login replaces it (token rotation), so at most
// one token per account is ever valid.
type Account struct {
	Username        string `json:"username,omitempty"`
	CredentialToken string `json:"-"` // Opaque signed token - never serialize
}

// HashPassword hashes a plaintext password with bcrypt. The salt is generated
// per call and embedded in the output, so two hashes of the same plaintext
// never compare equal.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash verifies a plaintext password against a bcrypt hash.
// Returns false for malformed hashes rather than returning an error.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
