package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/folio/blog/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AdminSessionKey is the session-scoped cache flag set while the admin is logged in.
const AdminSessionKey = "adminAuth"

const tokenIssuer = "folio"

// AuthConfig holds the shared admin credential and the token settings. When
// SecretHash is set it takes precedence over Secret.
type AuthConfig struct {
	Secret     string
	SecretHash string
	JWTSecret  []byte
	SessionTTL time.Duration
}

// AdminAuthenticator checks the shared admin secret and issues bearer tokens.
type AdminAuthenticator struct {
	cfg   AuthConfig
	cache domain.LocalCache
	now   func() time.Time
}

func NewAdminAuthenticator(cfg AuthConfig, cache domain.LocalCache) *AdminAuthenticator {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	return &AdminAuthenticator{cfg: cfg, cache: cache, now: time.Now}
}

// Enabled reports whether any admin credential is configured.
func (a *AdminAuthenticator) Enabled() bool {
	return (a.cfg.Secret != "" || a.cfg.SecretHash != "") && len(a.cfg.JWTSecret) > 0
}

// Login compares the secret in full, sets the session flag and returns a signed token.
func (a *AdminAuthenticator) Login(ctx context.Context, secret string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, fmt.Errorf("%w: admin login is not configured", domain.ErrUnauthorized)
	}
	if !a.matches(secret) {
		log.Warn().Msg("Rejected admin login")
		return "", time.Time{}, fmt.Errorf("%w: invalid credential", domain.ErrUnauthorized)
	}

	now := a.now()
	expires := now.Add(a.cfg.SessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString(a.cfg.JWTSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := a.cache.SetSessionFlag(ctx, AdminSessionKey, true); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to record admin session: %w", err)
	}

	log.Info().Time("expiresAt", expires).Msg("Admin logged in")
	return signed, expires, nil
}

// Logout clears the session flag. Tokens issued before stay unusable because
// Validate also requires the flag.
func (a *AdminAuthenticator) Logout(ctx context.Context) error {
	if err := a.cache.SetSessionFlag(ctx, AdminSessionKey, false); err != nil {
		return fmt.Errorf("failed to clear admin session: %w", err)
	}
	return nil
}

// Validate checks the token signature and expiry and that the session is still open.
func (a *AdminAuthenticator) Validate(ctx context.Context, raw string) error {
	if !a.Enabled() || raw == "" {
		return domain.ErrUnauthorized
	}

	_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return a.cfg.JWTSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	open, err := a.cache.SessionFlag(ctx, AdminSessionKey)
	if err != nil {
		return fmt.Errorf("failed to read admin session: %w", err)
	}
	if !open {
		return fmt.Errorf("%w: session closed", domain.ErrUnauthorized)
	}
	return nil
}

func (a *AdminAuthenticator) matches(secret string) bool {
	if a.cfg.SecretHash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(a.cfg.SecretHash), []byte(secret))
		if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Error().Err(err).Msg("Invalid admin secret hash")
		}
		return err == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(a.cfg.Secret)) == 1
}
