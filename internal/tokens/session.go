package tokens

import (
	"fmt"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are carried by both access and refresh tokens; Subject is the
// user id and ID a unique jti.
type SessionClaims struct {
	Role string `json:"role"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is a freshly signed access/refresh token pair.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// IssueSessionTokens signs an access token and a refresh token bound to the
// user's id and role, each with its own secret and window.
func (i *Issuer) IssueSessionTokens(u *models.User) (*Pair, error) {
	now := i.now()
	p := &Pair{
		AccessExpiresAt:  now.Add(i.accessTTL),
		RefreshExpiresAt: now.Add(i.refreshTTL),
	}
	var err error
	p.AccessToken, err = i.sign(i.sessionClaims(u, TypeAccess, now, p.AccessExpiresAt), i.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	p.RefreshToken, err = i.sign(i.sessionClaims(u, TypeRefresh, now, p.RefreshExpiresAt), i.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return p, nil
}

func (i *Issuer) sessionClaims(u *models.User, typ string, now, exp time.Time) SessionClaims {
	return SessionClaims{
		Role: u.Role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func (i *Issuer) ParseAccessToken(raw string) (*SessionClaims, error) {
	return i.parseSession(raw, i.accessSecret, TypeAccess)
}

func (i *Issuer) ParseRefreshToken(raw string) (*SessionClaims, error) {
	return i.parseSession(raw, i.refreshSecret, TypeRefresh)
}

func (i *Issuer) parseSession(raw string, secret []byte, typ string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := i.parse(raw, &claims, secret); err != nil {
		return nil, err
	}
	if claims.Type != typ || claims.Subject == "" {
		return nil, fmt.Errorf("%w: not an %s token", apperrors.ErrInvalidOrExpiredToken, typ)
	}
	return &claims, nil
}
