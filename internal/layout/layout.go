// Package layout stores the editable site sections (banner, FAQ, categories).
// There is at most one layout per type.
package layout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coursehub/coursehub-api/internal/apperrors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TypeBanner     = "Banner"
	TypeFAQ        = "FAQ"
	TypeCategories = "Categories"
)

type Layout struct {
	ID         string     `json:"_id" bson:"_id"`
	Type       string     `json:"type" bson:"type"`
	Banner     *Banner    `json:"banner,omitempty" bson:"banner,omitempty"`
	FAQ        []FAQItem  `json:"faq,omitempty" bson:"faq,omitempty"`
	Categories []Category `json:"categories,omitempty" bson:"categories,omitempty"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

type Banner struct {
	Image    string `json:"image" bson:"image"`
	Title    string `json:"title" bson:"title"`
	SubTitle string `json:"subTitle" bson:"subTitle"`
}

type FAQItem struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

type Category struct {
	Title string `json:"title" bson:"title"`
}

var ErrNotFound = fmt.Errorf("layout %w", apperrors.ErrNotFound)

type Repository interface {
	// Create fails with apperrors.ErrBadRequest when the type already exists.
	Create(ctx context.Context, l *Layout) error
	GetByType(ctx context.Context, typ string) (*Layout, error)
}

func existsErr(typ string) error {
	return fmt.Errorf("%w: %s already exist", apperrors.ErrBadRequest, typ)
}

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Create validates the payload for its type and stores it.
func (s *Service) Create(ctx context.Context, l *Layout) error {
	switch l.Type {
	case TypeBanner:
		if l.Banner == nil {
			return fmt.Errorf("%w: banner is required", apperrors.ErrBadRequest)
		}
		l.FAQ, l.Categories = nil, nil
	case TypeFAQ:
		l.Banner, l.Categories = nil, nil
	case TypeCategories:
		l.Banner, l.FAQ = nil, nil
	default:
		return fmt.Errorf("%w: unknown layout type %q", apperrors.ErrBadRequest, l.Type)
	}
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = l.CreatedAt
	return s.repo.Create(ctx, l)
}

func (s *Service) Get(ctx context.Context, typ string) (*Layout, error) {
	return s.repo.GetByType(ctx, typ)
}

// MemoryRepo is the in-process Repository.
type MemoryRepo struct {
	mu     sync.RWMutex
	byType map[string]*Layout
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byType: make(map[string]*Layout)}
}

func (m *MemoryRepo) Create(ctx context.Context, l *Layout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byType[l.Type]; ok {
		return existsErr(l.Type)
	}
	cp := *l
	m.byType[l.Type] = &cp
	return nil
}

func (m *MemoryRepo) GetByType(ctx context.Context, typ string) (*Layout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.byType[typ]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

// MongoRepo keeps layouts in a collection with a unique index on type.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo { return &MongoRepo{col: col} }

func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "type", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *MongoRepo) Create(ctx context.Context, l *Layout) error {
	if _, err := m.col.InsertOne(ctx, l); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return existsErr(l.Type)
		}
		return err
	}
	return nil
}

func (m *MongoRepo) GetByType(ctx context.Context, typ string) (*Layout, error) {
	var l Layout
	if err := m.col.FindOne(ctx, bson.M{"type": typ}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}
