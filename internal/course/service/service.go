package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/course"
	"github.com/coursehub/coursehub-api/internal/course/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Service defines the course operations used by the handler layer.
type Service struct {
	repo repository.Repository
}

func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() *Service {
	return New(repository.NewMemoryRepo())
}

// NewMongoService returns a Service backed by a MongoDB collection.
func NewMongoService(col *mongo.Collection) *Service {
	return New(repository.NewMongoRepo(col))
}

func validate(c *course.Course) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: course name is required", apperrors.ErrBadRequest)
	}
	if c.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", apperrors.ErrBadRequest)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, c *course.Course) (*course.Course, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	c.ID = ""
	c.Purchased = 0
	c.Ratings = 0
	c.Reviews = []course.Review{}
	prepareSections(c, nil)
	if _, err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return c, nil
}

func (s *Service) Edit(ctx context.Context, id string, c *course.Course) (*course.Course, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	old, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prepareSections(c, old)
	if err := s.repo.Update(ctx, id, c); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// prepareSections gives new sections an id and keeps the questions of
// sections that already exist in old.
func prepareSections(c, old *course.Course) {
	for i := range c.Sections {
		sec := &c.Sections[i]
		if sec.ID == "" {
			sec.ID = uuid.NewString()
		}
		sec.Questions = []course.Question{}
		if old == nil {
			continue
		}
		if prev, ok := old.Section(sec.ID); ok && prev.Questions != nil {
			sec.Questions = prev.Questions
		}
	}
}

// Get returns the preview of a course, without video URLs.
func (s *Service) Get(ctx context.Context, id string) (*course.Course, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Preview(), nil
}

func (s *Service) List(ctx context.Context) ([]*course.Course, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i, c := range list {
		list[i] = c.Preview()
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// RecordPurchase bumps the purchase counter of the course.
func (s *Service) RecordPurchase(ctx context.Context, id string) error {
	return s.repo.IncrementPurchased(ctx, id)
}

// Exists reports whether a course with id exists.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
