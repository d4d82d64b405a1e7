package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/cliptide/backend/internal/models"
)

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}

	if err := VerifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("verify matching password: %v", err)
	}
	if err := VerifyPassword(hash, "anything else"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePasswordRequiresOldPassword(t *testing.T) {
	hash, err := HashPassword("old-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	store := newFakeCredentialStore(models.User{ID: "user-1", Password: hash})
	creds := NewCredentials(store)

	if err := creds.ChangePassword(context.Background(), "user-1", "wrong", "new-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := creds.ChangePassword(context.Background(), "user-1", "old-password", "new-password"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	updated, err := store.FindByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if err := VerifyPassword(updated.Password, "new-password"); err != nil {
		t.Fatalf("verify new password: %v", err)
	}
	if err := VerifyPassword(updated.Password, "old-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("old password still verifies after change")
	}
}

func TestChangePasswordUnknownUser(t *testing.T) {
	creds := NewCredentials(newFakeCredentialStore())
	if err := creds.ChangePassword(context.Background(), "ghost", "a", "b"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
