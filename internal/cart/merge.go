package cart

import "github.com/ofcourt/storefront-backend/pkg/types"

// MergeItems folds a device-local cart into the server cart as a set union.
// Remote lines come first and win collisions: a local line whose product and
// customization match a remote line is dropped, not summed. The inputs are
// not mutated.
func MergeItems(remote, local types.CartItems) types.CartItems {
	merged := make(types.CartItems, 0, len(remote)+len(local))
	merged = append(merged, remote...)
	for _, item := range local {
		if !containsItem(merged, item) {
			merged = append(merged, item)
		}
	}
	return merged
}

func containsItem(items types.CartItems, candidate types.CartItem) bool {
	for _, item := range items {
		if item.SameProduct(candidate) {
			return true
		}
	}
	return false
}

// Total sums the line totals. Lines with a missing totalPrice count as zero.
func Total(items types.CartItems) float64 {
	var total float64
	for _, item := range items {
		total += item.TotalPrice
	}
	return total
}
