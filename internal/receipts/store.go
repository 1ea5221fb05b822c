// Package receipts persists the most recent completed order per shopper so
// the confirmation page survives a reload.
package receipts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgcheckout "github.com/ofcourt/storefront-backend/pkg/checkout"
	"github.com/ofcourt/storefront-backend/pkg/enums"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/kv"
	"github.com/ofcourt/storefront-backend/pkg/redis"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

// Receipt is the snapshot handed to the confirmation page after checkout.
type Receipt struct {
	OrderID        string                       `json:"orderID"`
	Email          string                       `json:"email"`
	DeliveryMethod enums.DeliveryMethod         `json:"deliveryMethod"`
	Shipping       *pkgcheckout.ShippingAddress `json:"shipping,omitempty"`
	Pickup         *pkgcheckout.PickupContact   `json:"pickup,omitempty"`
	Items          types.CartItems              `json:"items"`
	Subtotal       float64                      `json:"subtotal"`
	ShippingCost   float64                      `json:"shippingCost"`
	Total          float64                      `json:"total"`
	PaymentMethod  enums.PaymentMethod          `json:"paymentMethod"`
	Timestamp      time.Time                    `json:"timestamp"`
}

// Store keeps one receipt per shopper subject, replaced on each checkout.
type Store struct {
	kv  kv.Store
	ttl time.Duration
}

// NewStore builds a receipt store. TTL defaults to a week.
func NewStore(store kv.Store, ttl time.Duration) (*Store, error) {
	if store == nil {
		return nil, errors.New("receipt kv store is required")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Store{kv: store, ttl: ttl}, nil
}

// Save replaces the subject's receipt.
func (s *Store) Save(ctx context.Context, subject string, receipt Receipt) error {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding receipt")
	}
	if err := s.kv.Set(ctx, redis.ReceiptKey(subject), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving receipt")
	}
	return nil
}

// Last returns the subject's most recent receipt.
func (s *Store) Last(ctx context.Context, subject string) (*Receipt, error) {
	raw, err := s.kv.Get(ctx, redis.ReceiptKey(subject))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no receipt on record")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading receipt")
	}

	var receipt Receipt
	if err := json.Unmarshal([]byte(raw), &receipt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding receipt")
	}
	return &receipt, nil
}
