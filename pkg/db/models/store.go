package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is the storefront tenant. The backend serves a single store, looked
// up by its configured slug.
type Store struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Currency  string    `gorm:"column:currency;not null;default:'USD'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
