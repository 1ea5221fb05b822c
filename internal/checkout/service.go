package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/ofcourt/storefront-backend/internal/cart"
	"github.com/ofcourt/storefront-backend/internal/orders"
	"github.com/ofcourt/storefront-backend/internal/receipts"
	"github.com/ofcourt/storefront-backend/pkg/db/models"
	"github.com/ofcourt/storefront-backend/pkg/enums"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
	"github.com/ofcourt/storefront-backend/pkg/paypal"
	"github.com/ofcourt/storefront-backend/pkg/types"
)

type paymentProvider interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (string, error)
}

type orderCreator interface {
	Create(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error)
}

type receiptWriter interface {
	Save(ctx context.Context, subject string, receipt receipts.Receipt) error
}

type cartStore interface {
	Get(ctx context.Context, subject cart.Subject) (types.CartItems, error)
	Clear(ctx context.Context, subject cart.Subject) error
}

// Orchestrator sequences payment, order persistence, receipt write, and
// cart clearing. The captured payment is the source of truth: once the
// provider confirms, persistence failures degrade the record but never
// refuse the sale.
type Orchestrator struct {
	provider     paymentProvider
	orders       orderCreator
	receipts     receiptWriter
	carts        cartStore
	shippingCost decimal.Decimal
	currency     string
	logg         *logger.Logger
}

// OrchestratorParams collects the orchestrator dependencies. Provider may
// be nil when the deployment has no payment credentials; provider paths
// then fail with a configuration notice.
type OrchestratorParams struct {
	Provider          paymentProvider
	Orders            orderCreator
	Receipts          receiptWriter
	Carts             cartStore
	ShippingCostCents int64
	Currency          string
	Logger            *logger.Logger
}

// NewOrchestrator validates dependencies and builds the orchestrator.
func NewOrchestrator(params OrchestratorParams) (*Orchestrator, error) {
	if params.Orders == nil {
		return nil, errors.New("order creator is required")
	}
	if params.Receipts == nil {
		return nil, errors.New("receipt writer is required")
	}
	if params.Carts == nil {
		return nil, errors.New("cart store is required")
	}
	if params.Logger == nil {
		return nil, errors.New("checkout logger is required")
	}
	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}
	return &Orchestrator{
		provider:     params.Provider,
		orders:       params.Orders,
		receipts:     params.Receipts,
		carts:        params.Carts,
		shippingCost: decimal.NewFromInt(params.ShippingCostCents).Div(decimal.NewFromInt(100)),
		currency:     currency,
		logg:         params.Logger,
	}, nil
}

// Totals breaks down what the shopper owes for the given cart and
// delivery method. Shipping is flat; pickup is free.
type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shippingCost"`
	Total        float64 `json:"total"`
}

// TotalsFor computes the charge for a cart under the chosen delivery method.
func (o *Orchestrator) TotalsFor(items types.CartItems, method enums.DeliveryMethod) Totals {
	subtotal := cart.Total(items)
	shipping := 0.0
	if method == enums.DeliveryMethodShipping {
		shipping, _ = o.shippingCost.Float64()
	}
	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Total:        subtotal + shipping,
	}
}

// CreateProviderOrder opens a provider order for the subject's cart. The
// returned id is what the shopper's approval flow and the later capture
// reference.
func (o *Orchestrator) CreateProviderOrder(ctx context.Context, subject cart.Subject, form Form) (string, Totals, error) {
	if err := o.requireProvider(); err != nil {
		return "", Totals{}, err
	}
	if !form.ReadyForPayment() {
		return "", Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "contact and delivery details are incomplete")
	}

	items, err := o.carts.Get(ctx, subject)
	if err != nil {
		return "", Totals{}, err
	}
	if len(items) == 0 {
		return "", Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	totals := o.TotalsFor(items, form.DeliveryMethod)
	orderID, err := o.provider.CreateOrder(ctx, decimal.NewFromFloat(totals.Total), o.currency)
	if err != nil {
		return "", Totals{}, err
	}
	return orderID, totals, nil
}

// CompleteProviderOrder captures the provider order and, only after the
// provider reports COMPLETED, persists the order, writes the receipt, and
// clears the cart. Any other capture status leaves the cart intact.
func (o *Orchestrator) CompleteProviderOrder(ctx context.Context, subject cart.Subject, userID *uuid.UUID, providerOrderID string, form Form) (*receipts.Receipt, error) {
	if err := o.requireProvider(); err != nil {
		return nil, err
	}
	if providerOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider order id is required")
	}
	if !form.ReadyForPayment() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact and delivery details are incomplete")
	}

	status, err := o.provider.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}
	if status != paypal.StatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeProvider, "payment capture did not complete").
			WithDetails(map[string]any{"status": status})
	}

	return o.finish(ctx, subject, userID, providerOrderID, enums.PaymentMethodPayPal, form)
}

// CompleteCardOrder takes the card path: shape-validate the card, mint a
// local reference, and run the same persistence tail as a captured payment.
// No issuer is contacted.
func (o *Orchestrator) CompleteCardOrder(ctx context.Context, subject cart.Subject, userID *uuid.UUID, form Form) (*receipts.Receipt, error) {
	if !form.ReadyForPayment() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact and delivery details are incomplete")
	}
	if !form.Card.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card details are invalid")
	}

	reference := "card-" + uuid.NewString()
	return o.finish(ctx, subject, userID, reference, enums.PaymentMethodCard, form)
}

// finish runs the post-payment tail. The sale already happened, so every
// step here is best-effort: failures are aggregated and logged, and the
// shopper still gets their receipt.
func (o *Orchestrator) finish(ctx context.Context, subject cart.Subject, userID *uuid.UUID, reference string, method enums.PaymentMethod, form Form) (*receipts.Receipt, error) {
	items, err := o.carts.Get(ctx, subject)
	if err != nil {
		o.logg.Warn(ctx, "cart read failed after payment, receipt will have no items")
		items = types.CartItems{}
	}

	totals := o.TotalsFor(items, form.DeliveryMethod)
	receipt := receipts.Receipt{
		OrderID:        reference,
		Email:          form.Email,
		DeliveryMethod: form.DeliveryMethod,
		Items:          items,
		Subtotal:       totals.Subtotal,
		ShippingCost:   totals.ShippingCost,
		Total:          totals.Total,
		PaymentMethod:  method,
		Timestamp:      time.Now().UTC(),
	}
	switch form.DeliveryMethod {
	case enums.DeliveryMethodShipping:
		shipping := form.Shipping
		receipt.Shipping = &shipping
	case enums.DeliveryMethodPickup:
		pickup := form.Pickup
		receipt.Pickup = &pickup
	}

	var tail error

	input := orders.CreateOrderInput{
		CustomerEmail:   form.Email,
		TotalPrice:      decimal.NewFromFloat(totals.Total),
		Currency:        o.currency,
		Status:          enums.OrderStatusPaid,
		UserID:          userID,
		ProviderOrderID: &reference,
		Items:           items,
	}
	if name := form.CustomerName(); name != "" {
		input.CustomerName = &name
	}
	if _, err := o.orders.Create(ctx, input); err != nil {
		tail = multierr.Append(tail, err)
	}

	if err := o.receipts.Save(ctx, subject.Key(), receipt); err != nil {
		tail = multierr.Append(tail, err)
	}

	if err := o.carts.Clear(ctx, subject); err != nil {
		tail = multierr.Append(tail, err)
	}

	if tail != nil {
		o.logg.Error(o.logg.WithField(ctx, "provider_order_id", reference), "post-payment persistence degraded", tail)
	}

	return &receipt, nil
}

func (o *Orchestrator) requireProvider() error {
	if o.provider == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "payment provider is not configured")
	}
	return nil
}
