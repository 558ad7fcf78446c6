// Package tokens mints and verifies the signed tokens used by the service:
// the short-lived activation token carried between registration and
// activation, and the access/refresh pair that backs a login session.
package tokens

import (
	"fmt"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Issuer holds the signing secrets and validity windows.
type Issuer struct {
	activationSecret []byte
	accessSecret     []byte
	refreshSecret    []byte
	activationTTL    time.Duration
	accessTTL        time.Duration
	refreshTTL       time.Duration
	now              func() time.Time
}

func NewIssuer(cfg *config.Config) *Issuer {
	activationTTL := cfg.JWT.ActivationTTL
	if activationTTL <= 0 {
		activationTTL = 5 * time.Minute
	}
	return &Issuer{
		activationSecret: []byte(cfg.JWT.ActivationSecret),
		accessSecret:     []byte(cfg.JWT.AccessSecret),
		refreshSecret:    []byte(cfg.JWT.RefreshSecret),
		activationTTL:    activationTTL,
		accessTTL:        cfg.JWT.AccessTokenTTL,
		refreshTTL:       cfg.JWT.RefreshTokenTTL,
		now:              time.Now,
	}
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// Now reports the issuer's current time.
func (i *Issuer) Now() time.Time { return i.now() }

func (i *Issuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *Issuer) sign(claims jwt.Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parse verifies signature, algorithm and expiry. Every failure is reported as
// ErrInvalidOrExpiredToken wrapping the jwt cause.
func (i *Issuer) parse(raw string, claims jwt.Claims, secret []byte) error {
	if raw == "" {
		return apperrors.ErrInvalidOrExpiredToken
	}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidOrExpiredToken, err)
	}
	if !tkn.Valid {
		return apperrors.ErrInvalidOrExpiredToken
	}
	return nil
}
