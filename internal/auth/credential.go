package auth

import (
	"context"
	"errors"

	"github.com/masiqhakaze/website/internal/store"
)

var (
	// ErrCredentialMismatch means the old password did not match the stored one.
	ErrCredentialMismatch = errors.New("old password does not match")
	ErrEmptyPassword      = errors.New("password must not be empty")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// CredentialStore manages the single admin credential. Nothing is cached:
// every call reads the backend again.
type CredentialStore struct {
	backend store.Credentials
}

func NewCredentialStore(backend store.Credentials) *CredentialStore {
	return &CredentialStore{backend: backend}
}

// Current returns the stored hash and whether one exists.
func (c *CredentialStore) Current(ctx context.Context) (string, bool, error) {
	cred, err := c.backend.GetCredential(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return cred.HashedPassword, true, nil
}

// Authenticate returns false without error when no credential is set.
func (c *CredentialStore) Authenticate(ctx context.Context, plaintext string) (bool, error) {
	hashed, ok, err := c.Current(ctx)
	if err != nil || !ok {
		return false, err
	}
	return VerifyPassword(plaintext, hashed), nil
}

// SetOrReplace stores newPlaintext. With no credential yet, oldPlaintext is
// ignored; otherwise it must match or ErrCredentialMismatch is returned and
// storage is left untouched.
func (c *CredentialStore) SetOrReplace(ctx context.Context, oldPlaintext, newPlaintext string) error {
	if newPlaintext == "" {
		return ErrEmptyPassword
	}
	if len(newPlaintext) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	hashed, ok, err := c.Current(ctx)
	if err != nil {
		return err
	}
	if ok && !VerifyPassword(oldPlaintext, hashed) {
		return ErrCredentialMismatch
	}

	next, err := HashPassword(newPlaintext)
	if err != nil {
		return err
	}
	return c.backend.PutCredential(ctx, next)
}
