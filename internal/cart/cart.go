package cart

import (
	"errors"
	"fmt"
)

// ErrInvalidItem is returned when a line item carries out-of-range values.
var ErrInvalidItem = errors.New("invalid cart item")

// LineItem is a single priced line supplied by the caller. It is never mutated.
type LineItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Cart is the request-scoped collection of line items.
type Cart struct {
	Items []LineItem `json:"items"`
}

// Index builds a product lookup for rule matching. When the same product
// appears on multiple lines the last one wins; only one line per product is
// addressable for rule matching.
func Index(items []LineItem) map[int64]LineItem {
	index := make(map[int64]LineItem, len(items))
	for _, item := range items {
		index[item.ProductID] = item
	}
	return index
}

// Total returns the sum of price times quantity over all lines. An absent or
// empty item list yields zero, never an error.
func Total(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Validate rejects lines that would produce nonsensical arithmetic. An empty
// list is valid input.
func Validate(items []LineItem) error {
	for i, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive: %w", i, ErrInvalidItem)
		}
		if item.Price < 0 {
			return fmt.Errorf("item %d: price must not be negative: %w", i, ErrInvalidItem)
		}
	}
	return nil
}
