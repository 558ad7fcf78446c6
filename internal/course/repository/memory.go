package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/course"
	"github.com/google/uuid"
)

var (
	ErrNotFound         = fmt.Errorf("course %w", apperrors.ErrNotFound)
	ErrSectionNotFound  = fmt.Errorf("course content %w", apperrors.ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", apperrors.ErrNotFound)
	ErrReviewNotFound   = fmt.Errorf("review %w", apperrors.ErrNotFound)
)

// Repository is the course persistence contract.
type Repository interface {
	Create(ctx context.Context, c *course.Course) (string, error)
	Get(ctx context.Context, id string) (*course.Course, error)
	List(ctx context.Context) ([]*course.Course, error)
	Update(ctx context.Context, id string, c *course.Course) error
	Delete(ctx context.Context, id string) error
	IncrementPurchased(ctx context.Context, id string) error

	// Sub-document writes. Each appends atomically to the stored course.
	AddQuestion(ctx context.Context, courseID, sectionID string, q course.Question) error
	AddAnswer(ctx context.Context, courseID, sectionID, questionID string, a course.Answer) error
	// AddReview also recomputes the course rating.
	AddReview(ctx context.Context, courseID string, r course.Review) error
	AddReviewReply(ctx context.Context, courseID, reviewID string, r course.ReviewReply) error
}

// MemoryRepo is an in-memory repository used by tests and in development.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*course.Course
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*course.Course)}
}

func (m *MemoryRepo) Create(ctx context.Context, c *course.Course) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	m.store[c.ID] = clone(c)
	return c.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*course.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.store[id]; ok {
		return clone(c), nil
	}
	return nil, ErrNotFound
}

// List returns courses newest first.
func (m *MemoryRepo) List(ctx context.Context) ([]*course.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*course.Course, 0, len(m.store))
	for _, c := range m.store {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, id string, c *course.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	cp := clone(c)
	cp.ID = id
	cp.CreatedAt = old.CreatedAt
	cp.Purchased = old.Purchased
	cp.Reviews = old.Reviews
	cp.Ratings = old.Ratings
	cp.UpdatedAt = time.Now().UTC()
	m.store[id] = cp
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) IncrementPurchased(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	c.Purchased++
	return nil
}

func (m *MemoryRepo) AddQuestion(ctx context.Context, courseID, sectionID string, q course.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[courseID]
	if !ok {
		return ErrNotFound
	}
	sec, ok := c.Section(sectionID)
	if !ok {
		return ErrSectionNotFound
	}
	sec.Questions = append(sec.Questions, q)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepo) AddAnswer(ctx context.Context, courseID, sectionID, questionID string, a course.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[courseID]
	if !ok {
		return ErrNotFound
	}
	q, ok := c.Question(sectionID, questionID)
	if !ok {
		return ErrQuestionNotFound
	}
	q.Replies = append(q.Replies, a)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepo) AddReview(ctx context.Context, courseID string, r course.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[courseID]
	if !ok {
		return ErrNotFound
	}
	c.Reviews = append(c.Reviews, r)
	c.Ratings = c.AverageRating()
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepo) AddReviewReply(ctx context.Context, courseID, reviewID string, r course.ReviewReply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[courseID]
	if !ok {
		return ErrNotFound
	}
	rv, ok := c.Review(reviewID)
	if !ok {
		return ErrReviewNotFound
	}
	rv.Replies = append(rv.Replies, r)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// clone copies c including its nested slices so callers never share state
// with the stored course.
func clone(c *course.Course) *course.Course {
	cp := *c
	cp.Benefits = append([]course.Item(nil), c.Benefits...)
	cp.Prerequisites = append([]course.Item(nil), c.Prerequisites...)
	cp.Sections = make([]course.Section, len(c.Sections))
	for i, s := range c.Sections {
		qs := make([]course.Question, len(s.Questions))
		for j, q := range s.Questions {
			q.Replies = append([]course.Answer{}, q.Replies...)
			qs[j] = q
		}
		s.Questions = qs
		cp.Sections[i] = s
	}
	cp.Reviews = make([]course.Review, len(c.Reviews))
	for i, r := range c.Reviews {
		r.Replies = append([]course.ReviewReply{}, r.Replies...)
		cp.Reviews[i] = r
	}
	return &cp
}
