package stores

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ofcourt/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
)

type storeRepository interface {
	FindBySlug(ctx context.Context, slug string) (*models.Store, error)
}

// Service resolves the configured store. The deployment serves a single
// store identified by slug, so resolution is cached for the process lifetime.
type Service struct {
	repo storeRepository
	slug string

	mu     sync.Mutex
	cached *models.Store
}

// NewService builds the store service for the configured slug.
func NewService(repo storeRepository, slug string) (*Service, error) {
	if repo == nil {
		return nil, errors.New("store repository is required")
	}
	if slug == "" {
		return nil, errors.New("store slug is required")
	}
	return &Service{repo: repo, slug: slug}, nil
}

// ResolveID returns the configured store's id. A missing store row means the
// deployment is misconfigured, not that the caller asked for something wrong.
func (s *Service) ResolveID(ctx context.Context) (uuid.UUID, error) {
	store, err := s.resolve(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return store.ID, nil
}

// Get returns the configured store row.
func (s *Service) Get(ctx context.Context) (*models.Store, error) {
	return s.resolve(ctx)
}

func (s *Service) resolve(ctx context.Context) (*models.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return s.cached, nil
	}

	store, err := s.repo.FindBySlug(ctx, s.slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "store configuration error").
			WithDetails(map[string]any{"slug": s.slug})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving store")
	}

	s.cached = store
	return store, nil
}
