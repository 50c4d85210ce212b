package auth

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a salted bcrypt hash of plaintext, base64 encoded
// for storage. Two calls with the same input never return the same string;
// compare with VerifyPassword, not string equality.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(hashed), nil
}

// VerifyPassword reports whether plaintext matches a hash produced by
// HashPassword. Hashes that don't decode never match.
func VerifyPassword(plaintext, hashed string) bool {
	raw, err := base64.StdEncoding.DecodeString(hashed)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(raw, []byte(plaintext)) == nil
}
