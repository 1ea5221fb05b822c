package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ofcourt/storefront-backend/pkg/db/models"
	"github.com/ofcourt/storefront-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	stores := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  user_id TEXT,
  customer_email TEXT NOT NULL,
  customer_name TEXT,
  total_price NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'pending',
  provider_order_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  unit_price NUMERIC NOT NULL,
  line_total NUMERIC NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(stores).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLineItems).Error)
	return db
}

func newOrder(storeID uuid.UUID, email string, created time.Time) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		StoreID:       storeID,
		CustomerEmail: email,
		TotalPrice:    decimal.NewFromFloat(130.00),
		Currency:      "USD",
		Status:        enums.OrderStatusPaid,
		CreatedAt:     created,
	}
}

func TestCreateOrderAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	created, err := repo.CreateOrder(ctx, &models.Order{
		StoreID:       storeID,
		CustomerEmail: "player@example.com",
		TotalPrice:    decimal.NewFromFloat(130.00),
		Currency:      "USD",
		Status:        enums.OrderStatusPaid,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	require.NoError(t, repo.CreateLineItems(ctx, []models.OrderLineItem{
		{
			OrderID:     created.ID,
			StoreID:     storeID,
			ProductName: "Pro Racket",
			Quantity:    1,
			UnitPrice:   decimal.NewFromFloat(120.00),
			LineTotal:   decimal.NewFromFloat(120.00),
		},
	}))

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "player@example.com", found.CustomerEmail)
	assert.Equal(t, enums.OrderStatusPaid, found.Status)
	require.Len(t, found.LineItems, 1)
	assert.Equal(t, "Pro Racket", found.LineItems[0].ProductName)
}

func TestFindByIDMissing(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListByCustomerEmailNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	otherStoreID := uuid.New()
	now := time.Now().UTC()

	older := newOrder(storeID, "player@example.com", now.Add(-2*time.Hour))
	newer := newOrder(storeID, "player@example.com", now.Add(-1*time.Hour))
	otherCustomer := newOrder(storeID, "someone@example.com", now)
	otherStore := newOrder(otherStoreID, "player@example.com", now)

	for _, order := range []*models.Order{older, newer, otherCustomer, otherStore} {
		_, err := repo.CreateOrder(ctx, order)
		require.NoError(t, err)
	}

	listed, err := repo.ListByCustomerEmail(ctx, storeID, "player@example.com")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].ID)
	assert.Equal(t, older.ID, listed[1].ID)
}

func TestCreateLineItemsEmptyIsNoop(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.CreateLineItems(context.Background(), nil))
}
