package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ofcourt/storefront-backend/pkg/db/models"
	"github.com/ofcourt/storefront-backend/pkg/enums"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

type storeResolver interface {
	ResolveID(ctx context.Context) (uuid.UUID, error)
}

// CreateOrderInput carries everything needed to persist an order. TotalPrice
// is written as given; presence is checked at the transport boundary so an
// explicit zero total is a valid order.
type CreateOrderInput struct {
	CustomerEmail   string
	CustomerName    *string
	TotalPrice      decimal.Decimal
	Currency        string
	Status          enums.OrderStatus
	UserID          *uuid.UUID
	ProviderOrderID *string
	Items           types.CartItems
}

// Service owns order creation and history reads.
type Service struct {
	repo   Repository
	stores storeResolver
	logg   *logger.Logger
}

// NewService builds the orders service.
func NewService(repo Repository, stores storeResolver, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("orders repository is required")
	}
	if stores == nil {
		return nil, errors.New("store resolver is required")
	}
	if logg == nil {
		return nil, errors.New("orders logger is required")
	}
	return &Service{repo: repo, stores: stores, logg: logg}, nil
}

// Create persists the order row, then its line items best-effort. The order
// row is authoritative; a line-item failure is logged and the order stands.
func (s *Service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.CustomerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	storeID, err := s.stores.ResolveID(ctx)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}
	status := input.Status
	if status == "" {
		status = enums.OrderStatusPending
	}

	order := &models.Order{
		StoreID:         storeID,
		UserID:          input.UserID,
		CustomerEmail:   input.CustomerEmail,
		CustomerName:    input.CustomerName,
		TotalPrice:      input.TotalPrice,
		Currency:        currency,
		Status:          status,
		ProviderOrderID: input.ProviderOrderID,
	}
	if _, err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}

	lineItems := buildLineItems(order.ID, storeID, input.Items)
	if err := s.repo.CreateLineItems(ctx, lineItems); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID.String()), "failed to persist order line items")
	} else {
		order.LineItems = lineItems
	}

	return order, nil
}

// Get loads one order by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

// ListByCustomer returns the customer's orders for the configured store,
// newest first.
func (s *Service) ListByCustomer(ctx context.Context, email string) ([]models.Order, error) {
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	storeID, err := s.stores.ResolveID(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.ListByCustomerEmail(ctx, storeID, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return orders, nil
}

func buildLineItems(orderID, storeID uuid.UUID, items types.CartItems) []models.OrderLineItem {
	lineItems := make([]models.OrderLineItem, 0, len(items))
	for _, item := range items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		unitPrice := decimal.NewFromFloat(item.UnitPrice)
		lineItems = append(lineItems, models.OrderLineItem{
			OrderID:     orderID,
			StoreID:     storeID,
			ProductName: item.Title,
			Quantity:    qty,
			UnitPrice:   unitPrice,
			LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return lineItems
}
