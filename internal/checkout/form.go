package checkout

import (
	"strings"

	pkgcheckout "github.com/ofcourt/storefront-backend/pkg/checkout"
	"github.com/ofcourt/storefront-backend/pkg/enums"
)

// Form carries everything the shopper entered before paying.
type Form struct {
	Email          string                      `json:"email"`
	DeliveryMethod enums.DeliveryMethod        `json:"deliveryMethod"`
	Shipping       pkgcheckout.ShippingAddress `json:"shipping"`
	Pickup         pkgcheckout.PickupContact   `json:"pickup"`
	PaymentMethod  enums.PaymentMethod         `json:"paymentMethod"`
	Card           pkgcheckout.CardDetails     `json:"card"`
}

// EmailValid reports whether the contact step is complete.
func (f Form) EmailValid() bool {
	return pkgcheckout.IsEmailValid(f.Email)
}

// DeliveryValid reports whether the delivery step is complete for the
// chosen method.
func (f Form) DeliveryValid() bool {
	switch f.DeliveryMethod {
	case enums.DeliveryMethodShipping:
		return f.Shipping.Valid()
	case enums.DeliveryMethodPickup:
		return f.Pickup.Valid()
	default:
		return false
	}
}

// ReadyForPayment reports whether every pre-payment step is complete.
func (f Form) ReadyForPayment() bool {
	return f.EmailValid() && f.DeliveryValid()
}

// CustomerName extracts the shopper's name from whichever delivery block
// was filled in. Empty when neither carries one.
func (f Form) CustomerName() string {
	switch f.DeliveryMethod {
	case enums.DeliveryMethodShipping:
		return strings.TrimSpace(f.Shipping.FullName)
	case enums.DeliveryMethodPickup:
		return strings.TrimSpace(f.Pickup.FullName)
	default:
		return ""
	}
}
