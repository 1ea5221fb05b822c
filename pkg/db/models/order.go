package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ofcourt/storefront-backend/pkg/enums"
)

// Order is the authoritative record of a completed or pending purchase.
// ProviderOrderID carries the PayPal order id, or a synthesized card
// reference for card checkouts.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID         uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index"`
	UserID          *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	CustomerEmail   string            `gorm:"column:customer_email;not null;index"`
	CustomerName    *string           `gorm:"column:customer_name"`
	TotalPrice      decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null"`
	Currency        string            `gorm:"column:currency;not null;default:'USD'"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	ProviderOrderID *string           `gorm:"column:provider_order_id"`
	LineItems       []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
