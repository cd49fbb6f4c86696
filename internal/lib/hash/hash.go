// Package hash derives password hashes: a sha256 digest first, so inputs of
// any length fit under bcrypt's 72-byte limit, then bcrypt over the digest.
package hash

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

func Password(password string) ([]byte, error) {
	digest := sha256.Sum256([]byte(password))

	return bcrypt.GenerateFromPassword(digest[:], bcrypt.DefaultCost)
}

// Verify recomputes the digest and checks it against the stored hash.
// Comparison is constant-time inside bcrypt.
func Verify(password string, passHash []byte) bool {
	digest := sha256.Sum256([]byte(password))

	return bcrypt.CompareHashAndPassword(passHash, digest[:]) == nil
}
