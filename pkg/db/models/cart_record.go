package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ofcourt/storefront-backend/pkg/types"
)

// CartRecord is the server-persisted cart for an authenticated user, one row
// per user. Guest carts never touch this table; they live in redis until the
// sign-in merge folds them into the user's row.
type CartRecord struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     types.CartItems `gorm:"column:items;type:jsonb;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
