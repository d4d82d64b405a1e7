package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates a password did not match the stored hash.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword derives a one-way salted hash of the plaintext password. The
// same transform is applied at registration and on password change.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword re-derives the hash from the plaintext and compares it
// against the stored value. It returns ErrInvalidCredentials on mismatch.
func VerifyPassword(hash, plain string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Credentials exposes password verification and change operations over the
// credential store.
type Credentials struct {
	store CredentialStore
}

// NewCredentials constructs a Credentials service.
func NewCredentials(store CredentialStore) *Credentials {
	if store == nil {
		panic("auth: credential store must not be nil")
	}
	return &Credentials{store: store}
}

// ChangePassword re-verifies the old password before hashing and storing the
// new one. Outstanding refresh tokens are deliberately left intact.
func (c *Credentials) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := c.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := VerifyPassword(user.Password, oldPassword); err != nil {
		return err
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return c.store.UpdatePassword(ctx, userID, hashed)
}
