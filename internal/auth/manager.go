package auth

import (
	"context"
	"fmt"

	"github.com/cliptide/backend/internal/models"
)

// CredentialStore persists a user's password hash and the single outstanding
// refresh token value.
type CredentialStore interface {
	FindByID(ctx context.Context, userID string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	// SwapRefreshToken replaces the stored refresh token only when the stored
	// value still equals old, in one atomic update. It returns ErrTokenReused
	// when the value no longer matches and ErrUserNotFound when the user does
	// not exist.
	SwapRefreshToken(ctx context.Context, userID, old, replacement string) error
	ClearRefreshToken(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Manager orchestrates the refresh token lifecycle: a user has at most one
// valid outstanding refresh token, and issuing a new one invalidates the
// previous.
type Manager struct {
	signer *TokenSigner
	store  CredentialStore
}

// NewManager constructs a Manager over the provided signer and store.
func NewManager(signer *TokenSigner, store CredentialStore) *Manager {
	if signer == nil || store == nil {
		panic("auth: signer and credential store must not be nil")
	}
	return &Manager{signer: signer, store: store}
}

// Issue produces a fresh token pair for the user and persists the refresh
// value on the user record, superseding any previous session.
func (m *Manager) Issue(ctx context.Context, userID string) (models.TokenPair, error) {
	access, accessExpires, err := m.signer.IssueAccess(userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, refreshExpires, err := m.signer.IssueRefresh(userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := m.store.SetRefreshToken(ctx, userID, refresh); err != nil {
		return models.TokenPair{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExpires,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpires,
	}, nil
}

// Rotate exchanges a presented refresh token for a fresh pair. The stored
// value is swapped with a conditional update so two concurrent rotations can
// never both succeed. Callers must treat ErrTokenReused as "force
// re-authentication", never as a transient failure.
func (m *Manager) Rotate(ctx context.Context, presented string) (models.TokenPair, error) {
	userID, err := m.signer.ValidateRefresh(presented)
	if err != nil {
		return models.TokenPair{}, err
	}

	access, accessExpires, err := m.signer.IssueAccess(userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, refreshExpires, err := m.signer.IssueRefresh(userID)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := m.store.SwapRefreshToken(ctx, userID, presented, refresh); err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExpires,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpires,
	}, nil
}

// Revoke clears the stored refresh token. Subsequent rotations fail until the
// user logs in again.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	return m.store.ClearRefreshToken(ctx, userID)
}
