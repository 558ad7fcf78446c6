// Package order records course purchases.
package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/coursehub/coursehub-api/internal/course"
	"github.com/coursehub/coursehub-api/internal/notification"
	"github.com/coursehub/coursehub-api/pkg/logger"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Order struct {
	ID          string                 `json:"_id" bson:"_id"`
	CourseID    string                 `json:"courseId" bson:"courseId"`
	UserID      string                 `json:"userId" bson:"userId"`
	PaymentInfo map[string]interface{} `json:"payment_info,omitempty" bson:"payment_info,omitempty"`
	CreatedAt   time.Time              `json:"createdAt" bson:"createdAt"`
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	Exists(ctx context.Context, userID, courseID string) (bool, error)
}

// Courses is the catalogue view the order flow needs.
type Courses interface {
	Get(ctx context.Context, id string) (*course.Course, error)
	RecordPurchase(ctx context.Context, id string) error
}

type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) (*notification.Notification, error)
}

type Service struct {
	repo     Repository
	courses  Courses
	notifier Notifier
}

func NewService(r Repository, c Courses, n Notifier) *Service {
	return &Service{repo: r, courses: c, notifier: n}
}

// Create records a purchase of courseID by userID and notifies admins.
func (s *Service) Create(ctx context.Context, userID, courseID string, payment map[string]interface{}) (*Order, error) {
	if courseID == "" {
		return nil, fmt.Errorf("%w: courseId is required", apperrors.ErrBadRequest)
	}
	owned, err := s.repo.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, fmt.Errorf("%w: you have already purchased this course", apperrors.ErrBadRequest)
	}
	c, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:          uuid.NewString(),
		CourseID:    courseID,
		UserID:      userID,
		PaymentInfo: payment,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err := s.courses.RecordPurchase(ctx, courseID); err != nil {
		logger.Warnf("order %s: purchase counter not updated: %v", o.ID, err)
	}
	if _, err := s.notifier.Notify(ctx, userID, "New Order", "You have a new order from "+c.Name); err != nil {
		logger.Warnf("order %s: notification failed: %v", o.ID, err)
	}
	return o, nil
}

// Owns reports whether userID bought courseID.
func (s *Service) Owns(ctx context.Context, userID, courseID string) (bool, error) {
	return s.repo.Exists(ctx, userID, courseID)
}

type MemoryRepo struct {
	mu     sync.RWMutex
	orders map[string]*Order
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{orders: make(map[string]*Order)} }

func (m *MemoryRepo) Create(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MemoryRepo) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.UserID == userID && o.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo { return &MongoRepo{col: col} }

func (m *MongoRepo) Create(ctx context.Context, o *Order) error {
	_, err := m.col.InsertOne(ctx, o)
	return err
}

func (m *MongoRepo) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	n, err := m.col.CountDocuments(ctx, bson.M{"userId": userID, "courseId": courseID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
