package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/models"
	"github.com/google/uuid"
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// EmailTaken reports whether a user with email is already persisted.
func (s *Service) EmailTaken(ctx context.Context, email string) (bool, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("find user by email: %w", err)
	}
	return u != nil, nil
}

// Create hashes the password and persists a new user with the default role.
func (s *Service) Create(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user matching email and password. Unknown email and
// wrong password yield the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if u == nil || !u.ComparePassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
