// Package notification records admin notifications such as new orders.
package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const StatusUnread = "unread"

type Notification struct {
	ID        string    `json:"_id" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	Title     string    `json:"title" bson:"title"`
	Message   string    `json:"message" bson:"message"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// List returns all notifications, newest first.
	List(ctx context.Context) ([]*Notification, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service { return &Service{repo: r, now: time.Now} }

// Notify stores an unread notification about userID.
func (s *Service) Notify(ctx context.Context, userID, title, message string) (*Notification, error) {
	n := &Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Status:    StatusUnread,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context) ([]*Notification, error) {
	return s.repo.List(ctx)
}

type MemoryRepo struct {
	mu    sync.RWMutex
	items []*Notification
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (m *MemoryRepo) Create(ctx context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.items = append(m.items, &cp)
	return nil
}

func (m *MemoryRepo) List(ctx context.Context) ([]*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Notification, 0, len(m.items))
	for _, n := range m.items {
		cp := *n
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo { return &MongoRepo{col: col} }

func (m *MongoRepo) Create(ctx context.Context, n *Notification) error {
	_, err := m.col.InsertOne(ctx, n)
	return err
}

func (m *MongoRepo) List(ctx context.Context) ([]*Notification, error) {
	cur, err := m.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
