package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/course"
	"github.com/coursehub/coursehub-api/internal/models"
	"github.com/coursehub/coursehub-api/internal/notification"
	"github.com/coursehub/coursehub-api/pkg/logger"
	"github.com/google/uuid"
)

var errNotEligible = fmt.Errorf("%w: you are not eligible to access this course", apperrors.ErrNotFound)

// Purchases reports whether a user bought a course.
type Purchases interface {
	Owns(ctx context.Context, userID, courseID string) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) (*notification.Notification, error)
}

// Content serves the full course material and its discussion to buyers.
// Admins may access every course.
type Content struct {
	courses   *Service
	purchases Purchases
	notifier  Notifier
	now       func() time.Time
}

func NewContent(courses *Service, purchases Purchases, notifier Notifier) *Content {
	return &Content{courses: courses, purchases: purchases, notifier: notifier, now: time.Now}
}

func (c *Content) eligible(ctx context.Context, u *models.User, courseID string) error {
	if u.Role == models.RoleAdmin {
		return nil
	}
	owns, err := c.purchases.Owns(ctx, u.ID, courseID)
	if err != nil {
		return err
	}
	if !owns {
		return errNotEligible
	}
	return nil
}

// Sections returns the sections of a purchased course, video URLs and
// questions included.
func (c *Content) Sections(ctx context.Context, u *models.User, courseID string) ([]course.Section, error) {
	if err := c.eligible(ctx, u, courseID); err != nil {
		return nil, err
	}
	full, err := c.courses.repo.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return full.Sections, nil
}

func (c *Content) AddQuestion(ctx context.Context, u *models.User, courseID, sectionID, text string) (*course.Question, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: question is required", apperrors.ErrBadRequest)
	}
	if err := c.eligible(ctx, u, courseID); err != nil {
		return nil, err
	}
	q := course.Question{
		ID:        uuid.NewString(),
		User:      author(u),
		Question:  text,
		Replies:   []course.Answer{},
		CreatedAt: c.now().UTC(),
	}
	if err := c.courses.repo.AddQuestion(ctx, courseID, sectionID, q); err != nil {
		return nil, err
	}
	c.notify(ctx, u.ID, "New Question Received", "You have a new question in course "+courseID)
	return &q, nil
}

// AddAnswer replies to a question. The asker answering their own question
// raises an admin notification.
func (c *Content) AddAnswer(ctx context.Context, u *models.User, courseID, sectionID, questionID, text string) (*course.Answer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: answer is required", apperrors.ErrBadRequest)
	}
	if err := c.eligible(ctx, u, courseID); err != nil {
		return nil, err
	}
	a := course.Answer{ID: uuid.NewString(), User: author(u), Answer: text, CreatedAt: c.now().UTC()}
	if err := c.courses.repo.AddAnswer(ctx, courseID, sectionID, questionID, a); err != nil {
		return nil, err
	}

	full, err := c.courses.repo.Get(ctx, courseID)
	if err != nil {
		logger.Warnf("answer %s stored, course reload failed: %v", a.ID, err)
		return &a, nil
	}
	if q, ok := full.Question(sectionID, questionID); ok {
		if q.User.ID == u.ID {
			c.notify(ctx, u.ID, "New Question Reply Received", "You have a new question reply in "+full.Name)
		} else {
			c.notify(ctx, q.User.ID, "Your question was answered", u.Name+" answered your question in "+full.Name)
		}
	}
	return &a, nil
}

// AddReview records a buyer's rating (1 to 5) and returns the updated course.
func (c *Content) AddReview(ctx context.Context, u *models.User, courseID, comment string, rating int) (*course.Course, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", apperrors.ErrBadRequest)
	}
	if err := c.eligible(ctx, u, courseID); err != nil {
		return nil, err
	}
	r := course.Review{
		ID:        uuid.NewString(),
		User:      author(u),
		Rating:    rating,
		Comment:   comment,
		Replies:   []course.ReviewReply{},
		CreatedAt: c.now().UTC(),
	}
	if err := c.courses.repo.AddReview(ctx, courseID, r); err != nil {
		return nil, err
	}
	updated, err := c.courses.repo.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c.notify(ctx, u.ID, "New Review Received", u.Name+" has given a review in "+updated.Name)
	return updated.Preview(), nil
}

// AddReviewReply lets an admin answer a review.
func (c *Content) AddReviewReply(ctx context.Context, u *models.User, courseID, reviewID, comment string) (*course.Course, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, fmt.Errorf("%w: comment is required", apperrors.ErrBadRequest)
	}
	r := course.ReviewReply{ID: uuid.NewString(), User: author(u), Comment: comment, CreatedAt: c.now().UTC()}
	if err := c.courses.repo.AddReviewReply(ctx, courseID, reviewID, r); err != nil {
		return nil, err
	}
	updated, err := c.courses.repo.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return updated.Preview(), nil
}

func (c *Content) notify(ctx context.Context, userID, title, message string) {
	if _, err := c.notifier.Notify(ctx, userID, title, message); err != nil {
		logger.Warnf("notification %q for %s failed: %v", title, userID, err)
	}
}

func author(u *models.User) course.Author {
	a := course.Author{ID: u.ID, Name: u.Name}
	if u.Avatar != nil {
		a.Avatar = u.Avatar.URL
	}
	return a
}
