// Package jwttoken issues and verifies the HS256 bearer tokens returned by password login.
package jwttoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	platformclock "github.com/chingu-voyages/demographics-api/internal/platform/clock"
	clockport "github.com/chingu-voyages/demographics-api/internal/ports/out/clock"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

// Config configures token signing. Secret must be at least 32 bytes in deployed environments.
type Config struct {
	Secret    []byte
	Issuer    string
	TTL       time.Duration
	ClockSkew time.Duration
}

// Claims is the token payload.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with a shared secret.
type Manager struct {
	cfg   Config
	clock clockport.Clock
}

func New(cfg Config) *Manager {
	return NewWithClock(cfg, nil)
}

// NewWithClock uses clock for issue and expiry times. A nil clock means the system clock.
func NewWithClock(cfg Config, clock clockport.Clock) *Manager {
	if clock == nil {
		clock = platformclock.NewSystemClock()
	}
	return &Manager{cfg: cfg, clock: clock}
}

// Issue returns a signed token for subject that expires after the configured TTL.
func (m *Manager) Issue(subject, email string) (string, time.Time, error) {
	now := m.clock.Now()
	exp := now.Add(m.cfg.TTL)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, issuer, expiry and not-before, and returns the subject.
//
// Every failure maps to ErrUnauthorized so callers cannot leak why a token was rejected.
func (m *Manager) Verify(ctx context.Context, token string) (string, error) {
	_ = ctx
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.cfg.ClockSkew),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized
	}
	if claims.Subject == "" {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}
