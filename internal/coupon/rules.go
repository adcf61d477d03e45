package coupon

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates the requested coupon does not exist.
	ErrNotFound = errors.New("coupon not found")
	// ErrInvalidKind is returned when a payload names an unsupported coupon kind.
	ErrInvalidKind = errors.New("invalid coupon kind")
	// ErrInvalidRule is returned when a coupon definition carries missing or
	// out-of-range fields for its kind.
	ErrInvalidRule = errors.New("invalid coupon rule")
)

// Kind discriminates the closed set of coupon rule shapes.
type Kind string

const (
	KindCartWise    Kind = "cart-wise"
	KindProductWise Kind = "product-wise"
	KindBxGy        Kind = "bxgy"
)

// ProductQuantity pairs a product with a quantity, used for both the buy side
// and the get side of a bxgy rule.
type ProductQuantity struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

// CartWiseRule discounts the whole cart once its total strictly exceeds the
// threshold.
type CartWiseRule struct {
	Threshold float64 `json:"threshold"`
}

// ProductWiseRule discounts a single product's line.
type ProductWiseRule struct {
	ProductID int64 `json:"product_id"`
}

// BxGyRule grants get-side products for free when every buy-side requirement
// is met, up to RepetitionLimit repetitions.
type BxGyRule struct {
	BuyProducts     []ProductQuantity `json:"buy_products"`
	GetProducts     []ProductQuantity `json:"get_products"`
	RepetitionLimit int               `json:"repetition_limit"`
}

// Rule is the persisted coupon definition. Exactly one of the kind-specific
// payloads is set, matching Kind.
type Rule struct {
	ID          uuid.UUID        `json:"id"`
	Kind        Kind             `json:"type"`
	Discount    int              `json:"discount"`
	CartWise    *CartWiseRule    `json:"cart_wise,omitempty"`
	ProductWise *ProductWiseRule `json:"product_wise,omitempty"`
	BxGy        *BxGyRule        `json:"bxgy,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Validate checks that the rule is internally consistent for its kind.
func (r Rule) Validate() error {
	if r.Discount < 0 || r.Discount > 100 {
		return fmt.Errorf("discount must be between 0 and 100: %w", ErrInvalidRule)
	}
	switch r.Kind {
	case KindCartWise:
		if r.CartWise == nil {
			return fmt.Errorf("threshold is required for cart-wise coupons: %w", ErrInvalidRule)
		}
		if r.CartWise.Threshold < 0 {
			return fmt.Errorf("threshold must not be negative: %w", ErrInvalidRule)
		}
	case KindProductWise:
		if r.ProductWise == nil {
			return fmt.Errorf("product_id is required for product-wise coupons: %w", ErrInvalidRule)
		}
	case KindBxGy:
		if r.BxGy == nil {
			return fmt.Errorf("bxgy details are required: %w", ErrInvalidRule)
		}
		if len(r.BxGy.BuyProducts) == 0 {
			return fmt.Errorf("buy_products must not be empty: %w", ErrInvalidRule)
		}
		if len(r.BxGy.GetProducts) == 0 {
			return fmt.Errorf("get_products must not be empty: %w", ErrInvalidRule)
		}
		if r.BxGy.RepetitionLimit <= 0 {
			return fmt.Errorf("repetition_limit must be positive: %w", ErrInvalidRule)
		}
		for _, p := range r.BxGy.BuyProducts {
			if p.Quantity <= 0 {
				return fmt.Errorf("buy product %d: quantity must be positive: %w", p.ProductID, ErrInvalidRule)
			}
		}
		for _, p := range r.BxGy.GetProducts {
			if p.Quantity <= 0 {
				return fmt.Errorf("get product %d: quantity must be positive: %w", p.ProductID, ErrInvalidRule)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, r.Kind)
	}
	return nil
}
