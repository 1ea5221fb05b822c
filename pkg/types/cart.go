package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"maps"
)

// CartItem is one purchasable line in a cart. CartID identifies the line
// itself; ProductID identifies the product it was added from. Two lines with
// the same product but different customization are distinct.
type CartItem struct {
	ProductID     string            `json:"id"`
	Title         string            `json:"title"`
	UnitPrice     float64           `json:"unitPrice"`
	Quantity      int               `json:"quantity"`
	TotalPrice    float64           `json:"totalPrice"`
	Customization map[string]string `json:"customization,omitempty"`
	CartID        string            `json:"cartId"`
}

// SameProduct reports whether two lines refer to the same product with
// structurally equal customization. An empty map and a nil map are equal.
func (c CartItem) SameProduct(other CartItem) bool {
	return c.ProductID == other.ProductID && maps.Equal(c.Customization, other.Customization)
}

// CartItems is a cart payload persisted as a JSON array (jsonb column for
// user carts, redis value for guest carts).
type CartItems []CartItem

// Value serializes the items to JSON.
func (c CartItems) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

// Scan decodes JSONB into the item slice.
func (c *CartItems) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded CartItems
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*c = decoded
	return nil
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
