package checkout

import (
	"regexp"
	"strings"
)

var (
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	expiryRegex = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvRegex    = regexp.MustCompile(`^\d{3,4}$`)
)

// IsEmailValid applies the storefront email shape check.
func IsEmailValid(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// ShippingAddress is the delivery sub-form for shipped orders.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}

// Valid reports whether the required shipping fields are non-blank after
// trimming. Country is optional; it defaults at display time.
func (s ShippingAddress) Valid() bool {
	for _, field := range []string{s.FullName, s.Address, s.City, s.State, s.ZipCode} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// PickupContact is the delivery sub-form for in-store pickup.
type PickupContact struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
}

// Valid reports whether both pickup fields are non-blank after trimming.
func (p PickupContact) Valid() bool {
	return strings.TrimSpace(p.FullName) != "" && strings.TrimSpace(p.PhoneNumber) != ""
}

// CardDetails is the card payment sub-form.
type CardDetails struct {
	Number     string `json:"number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
	HolderName string `json:"holderName"`
}

// Valid checks the card shape: exactly 16 digits, MM/YY expiry, 3-4 digit
// CVV, non-blank holder name. No issuer-side verification happens here.
func (c CardDetails) Valid() bool {
	digits := digitsOnly(c.Number)
	if len(digits) != 16 {
		return false
	}
	if !expiryRegex.MatchString(strings.TrimSpace(c.Expiry)) {
		return false
	}
	if !cvvRegex.MatchString(strings.TrimSpace(c.CVV)) {
		return false
	}
	return strings.TrimSpace(c.HolderName) != ""
}

// FormatCardNumber normalizes raw input to digit groups of four separated by
// spaces, capped at 16 digits.
func FormatCardNumber(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > 16 {
		digits = digits[:16]
	}
	var groups []string
	for i := 0; i < len(digits); i += 4 {
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		groups = append(groups, digits[i:end])
	}
	return strings.Join(groups, " ")
}

// FormatExpiry normalizes raw input to MM/YY, inserting the slash once the
// month is complete and capping at four digits.
func FormatExpiry(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

func digitsOnly(value string) string {
	var builder strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}
