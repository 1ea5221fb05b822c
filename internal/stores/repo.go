package stores

import (
	"context"

	"gorm.io/gorm"

	"github.com/ofcourt/storefront-backend/pkg/db/models"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindBySlug loads a store by its slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}
