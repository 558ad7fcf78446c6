// Package auth implements account activation and the login session lifecycle:
// issuing, refreshing and ending sessions. It is the only writer of session
// state.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/mail"
	"github.com/coursehub/coursehub-api/internal/models"
	"github.com/coursehub/coursehub-api/internal/sessions"
	"github.com/coursehub/coursehub-api/internal/tokens"
	"github.com/coursehub/coursehub-api/pkg/logger"
	"github.com/coursehub/coursehub-api/pkg/metrics"
)

// Users is the credential store the service depends on.
type Users interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type Service struct {
	users  Users
	issuer *tokens.Issuer
	store  sessions.Store
	mailer mail.Sender
}

func NewService(users Users, issuer *tokens.Issuer, store sessions.Store, mailer mail.Sender) *Service {
	return &Service{users: users, issuer: issuer, store: store, mailer: mailer}
}

// Register starts account creation. Nothing is persisted: the pending account
// travels inside the returned activation token and the code goes out by mail.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return "", fmt.Errorf("%w: name, email and password are required", apperrors.ErrBadRequest)
	}
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperrors.ErrUserAlreadyExists
	}

	tok, code, err := s.issuer.IssueActivationToken(tokens.PendingUser{Name: name, Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("issue activation token: %w", err)
	}
	if err := s.mailer.SendActivation(ctx, mail.ActivationMail{Email: email, Name: name, Code: code}); err != nil {
		return "", fmt.Errorf("send activation mail: %w", err)
	}
	return tok, nil
}

// CompleteActivation checks the code against the signed token and persists
// the account with the default role.
func (s *Service) CompleteActivation(ctx context.Context, token, code string) (u *models.User, err error) {
	defer func() { metrics.Activations.WithLabelValues(metrics.Result(err)).Inc() }()

	claims, err := s.issuer.VerifyActivationToken(token)
	if err != nil {
		return nil, err
	}
	if claims.ActivationCode != code {
		return nil, apperrors.ErrCodeMismatch
	}
	pending := claims.User
	taken, err := s.users.EmailTaken(ctx, pending.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrUserAlreadyExists
	}
	// a concurrent activation of the same email surfaces as a duplicate key
	u, err = s.users.Create(ctx, pending.Name, pending.Email, pending.Password)
	if err != nil {
		return nil, err
	}
	logger.Infof("activated user %s", u.ID)
	return u, nil
}

// Login authenticates the credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (u *models.User, pair *tokens.Pair, err error) {
	defer func() { metrics.Logins.WithLabelValues(metrics.Result(err)).Inc() }()

	u, err = s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	pair, err = s.IssueSession(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// IssueSession signs a token pair for u and caches its snapshot for the
// refresh window. A later session of the same user replaces the snapshot.
func (s *Service) IssueSession(ctx context.Context, u *models.User) (*tokens.Pair, error) {
	pair, err := s.issuer.IssueSessionTokens(u)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, u, s.issuer.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("save session %s: %w", u.ID, err)
	}
	return pair, nil
}

// Refresh rotates the session: the presented refresh token is spent and a new
// pair is returned.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (pair *tokens.Pair, u *models.User, err error) {
	defer func() { metrics.Refreshes.WithLabelValues(metrics.Result(err)).Inc() }()

	claims, err := s.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, fmt.Errorf("%w: refresh token already used", apperrors.ErrInvalidOrExpiredToken)
	}
	u, err = s.store.Load(ctx, claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, fmt.Errorf("%w: no active session", apperrors.ErrInvalidOrExpiredToken)
	}

	pair, err = s.issuer.IssueSessionTokens(u)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.Rotate(ctx, claims.ID, s.remaining(claims), u, s.issuer.RefreshTTL()); err != nil {
		return nil, nil, err
	}
	return pair, u, nil
}

// Logout ends the user's session. The refresh token is optional; when it is
// valid and belongs to userID its jti is revoked as well.
func (s *Service) Logout(ctx context.Context, userID, refreshToken string) error {
	var jti string
	var ttl time.Duration
	if refreshToken != "" {
		if claims, err := s.issuer.ParseRefreshToken(refreshToken); err == nil && claims.Subject == userID {
			jti, ttl = claims.ID, s.remaining(claims)
		}
	}
	if err := s.store.End(ctx, userID, jti, ttl); err != nil {
		return fmt.Errorf("end session %s: %w", userID, err)
	}
	return nil
}

// CurrentUser returns the cached snapshot, falling back to the credential
// store when the cache has none.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.store.Load(ctx, userID)
	if err != nil {
		logger.Warnf("session lookup for %s failed: %v", userID, err)
	}
	if u != nil {
		return u, nil
	}
	u, err = s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.ErrNotFound
	}
	return u.Snapshot(), nil
}

// Session returns the cached snapshot for userID, nil when logged out.
func (s *Service) Session(ctx context.Context, userID string) (*models.User, error) {
	return s.store.Load(ctx, userID)
}

func (s *Service) Issuer() *tokens.Issuer { return s.issuer }

// remaining is the lifetime left on a refresh token by the issuer's clock.
func (s *Service) remaining(c *tokens.SessionClaims) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(s.issuer.Now())
}
