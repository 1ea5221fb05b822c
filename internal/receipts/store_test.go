package receipts

import (
	"context"
	"testing"
	"time"

	pkgcheckout "github.com/ofcourt/storefront-backend/pkg/checkout"
	"github.com/ofcourt/storefront-backend/pkg/enums"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/kv"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

func TestSaveAndLast(t *testing.T) {
	t.Parallel()

	store, err := NewStore(kv.NewMemory(), time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	receipt := Receipt{
		OrderID:        "5O190127TN364715T",
		Email:          "player@example.com",
		DeliveryMethod: enums.DeliveryMethodShipping,
		Shipping: &pkgcheckout.ShippingAddress{
			FullName: "Alex Chen",
			Address:  "12 Court Lane",
			City:     "Norman",
			State:    "OK",
			ZipCode:  "73072",
			Country:  "US",
		},
		Items:         types.CartItems{{ProductID: "racket", Title: "Pro Racket", Quantity: 1, TotalPrice: 120}},
		Subtotal:      120,
		ShippingCost:  10,
		Total:         130,
		PaymentMethod: enums.PaymentMethodPayPal,
		Timestamp:     time.Now().UTC().Truncate(time.Second),
	}

	if err := store.Save(ctx, "user:abc", receipt); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Last(ctx, "user:abc")
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if got.OrderID != receipt.OrderID || got.Total != receipt.Total {
		t.Fatalf("receipt mismatch: %+v", got)
	}
	if got.Shipping == nil || got.Shipping.City != "Norman" {
		t.Fatalf("expected shipping block preserved, got %+v", got.Shipping)
	}
	if got.Pickup != nil {
		t.Fatal("expected no pickup block on a shipped order")
	}
}

func TestSaveReplacesPreviousReceipt(t *testing.T) {
	t.Parallel()

	store, err := NewStore(kv.NewMemory(), time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "guest:device-1", Receipt{OrderID: "first"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "guest:device-1", Receipt{OrderID: "second"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Last(ctx, "guest:device-1")
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if got.OrderID != "second" {
		t.Fatalf("expected latest receipt, got %q", got.OrderID)
	}
}

func TestLastMissingReceipt(t *testing.T) {
	t.Parallel()

	store, err := NewStore(kv.NewMemory(), time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, err = store.Last(context.Background(), "guest:unknown")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubjectsAreIsolated(t *testing.T) {
	t.Parallel()

	store, err := NewStore(kv.NewMemory(), time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "user:a", Receipt{OrderID: "for-a"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := store.Last(ctx, "user:b"); pkgerrors.As(err) == nil {
		t.Fatal("expected not found for other subject")
	}
}
