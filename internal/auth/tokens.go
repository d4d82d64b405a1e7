package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates a token failed signature, expiry, or shape checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenReused indicates a presented refresh token no longer matches the
	// stored value: it expired or was superseded by a newer rotation.
	ErrTokenReused = errors.New("refresh token expired or already used")
	// ErrUserNotFound indicates the user referenced by a token does not exist.
	ErrUserNotFound = errors.New("user not found")
)

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

// SignerConfig controls token signing secrets and lifetimes.
type SignerConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenSigner issues and validates the two classes of signed bearer tokens.
// Access tokens are short-lived and never persisted; refresh tokens are
// long-lived and additionally stored on the user record by the Manager.
type TokenSigner struct {
	cfg SignerConfig
	now func() time.Time
}

// NewTokenSigner validates the configuration and constructs a signer.
func NewTokenSigner(cfg SignerConfig) (*TokenSigner, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("auth: signing secrets must be provided")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}
	return &TokenSigner{cfg: cfg, now: time.Now}, nil
}

type sessionClaims struct {
	Use string `json:"use"`
	jwt.RegisteredClaims
}

// IssueAccess signs a short-lived access token carrying the user id as its
// only trusted claim.
func (s *TokenSigner) IssueAccess(userID string) (string, time.Time, error) {
	return s.issue(userID, useAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token for the user.
func (s *TokenSigner) IssueRefresh(userID string) (string, time.Time, error) {
	return s.issue(userID, useRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

func (s *TokenSigner) issue(userID, use string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(userID) == "" {
		return "", time.Time{}, errors.New("auth: user id must be provided")
	}

	now := s.now().UTC()
	expires := now.Add(ttl)

	claims := sessionClaims{
		Use: use,
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique id keeps two tokens minted in the same second distinct,
			// which the rotation compare-and-swap depends on.
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", use, err)
	}

	return signed, expires, nil
}

// ValidateAccess verifies the signature and expiry of an access token and
// returns the user id it was issued to. The check is stateless.
func (s *TokenSigner) ValidateAccess(token string) (string, error) {
	return s.validate(token, useAccess, s.cfg.AccessSecret)
}

// ValidateRefresh verifies the signature and expiry of a refresh token. It
// does not consult storage; the Manager compares the presented value against
// the stored one during rotation.
func (s *TokenSigner) ValidateRefresh(token string) (string, error) {
	return s.validate(token, useRefresh, s.cfg.RefreshSecret)
}

func (s *TokenSigner) validate(token, use string, secret []byte) (string, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.cfg.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(token, &sessionClaims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Use != use || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
