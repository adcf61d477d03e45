package coupon

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-promo/internal/cart"
)

// Applicable is the evaluation result for a single matching coupon.
type Applicable struct {
	CouponID uuid.UUID `json:"coupon_id"`
	Kind     Kind      `json:"type"`
	Discount float64   `json:"discount"`
}

// AppliedItem is one line of the itemized cart after a coupon was applied.
type AppliedItem struct {
	ProductID     int64   `json:"product_id"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
	TotalDiscount float64 `json:"total_discount"`
}

// AppliedCart is the full result of applying one coupon to a cart.
type AppliedCart struct {
	Items         []AppliedItem `json:"items"`
	TotalPrice    float64       `json:"total_price"`
	TotalDiscount float64       `json:"total_discount"`
	FinalPrice    float64       `json:"final_price"`
}

// FindApplicable evaluates every rule against the cart and returns the
// matching subset sorted descending by discount. Ties keep the input order.
// An empty cart yields an empty result, never an error.
func FindApplicable(items []cart.LineItem, rules []Rule) ([]Applicable, error) {
	if len(items) == 0 {
		return []Applicable{}, nil
	}
	index := cart.Index(items)
	total := cart.Total(items)

	results := make([]Applicable, 0, len(rules))
	for _, rule := range rules {
		ok, discount, _, err := evaluate(rule, index, total)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		results = append(results, Applicable{CouponID: rule.ID, Kind: rule.Kind, Discount: discount})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Discount > results[j].Discount
	})
	return results, nil
}

// Apply computes the itemized cart resulting from applying one rule. The rule
// has already been located by the caller; applicability is not re-checked for
// cart-wise coupons, which discount unconditionally here, matching the
// evaluation formulas.
func Apply(rule Rule, items []cart.LineItem) (AppliedCart, error) {
	index := cart.Index(items)
	total := cart.Total(items)

	var (
		discount float64
		eligible int
	)
	switch rule.Kind {
	case KindCartWise:
		discount = total * float64(rule.Discount) / 100
	case KindProductWise:
		if item, ok := index[rule.ProductWise.ProductID]; ok {
			discount = item.Price * float64(item.Quantity) * float64(rule.Discount) / 100
		}
	case KindBxGy:
		_, discount, eligible = evaluateBxGy(rule.BxGy, index)
	default:
		return AppliedCart{}, fmt.Errorf("%w: %q", ErrInvalidKind, rule.Kind)
	}

	updated := make([]AppliedItem, 0, len(items))
	for _, item := range items {
		line := AppliedItem{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price}
		switch rule.Kind {
		case KindProductWise:
			if item.ProductID == rule.ProductWise.ProductID {
				line.TotalDiscount = item.Price * float64(item.Quantity) * float64(rule.Discount) / 100
			}
		case KindBxGy:
			if eligible > 0 && matchesGetProduct(rule.BxGy, item.ProductID) {
				// The full computed discount is attached to every reward line,
				// not apportioned per unit or per line.
				line.TotalDiscount = discount
				line.Quantity = item.Quantity + eligible
			}
		}
		updated = append(updated, line)
	}

	totalPrice := total
	finalPrice := totalPrice - discount
	if rule.Kind == KindBxGy {
		// Rewarded units are free rather than price-discounted: the reported
		// total is inflated by the discount so final = total - discount still
		// reconciles.
		finalPrice = totalPrice
		totalPrice += discount
	}
	return AppliedCart{
		Items:         updated,
		TotalPrice:    totalPrice,
		TotalDiscount: discount,
		FinalPrice:    finalPrice,
	}, nil
}

// evaluate runs one rule's applicability test and discount formula. For bxgy
// rules the eligible repetition count is part of the result and must be
// threaded through to itemization rather than kept anywhere shared.
func evaluate(rule Rule, index map[int64]cart.LineItem, total float64) (bool, float64, int, error) {
	switch rule.Kind {
	case KindCartWise:
		if total > rule.CartWise.Threshold {
			return true, total * float64(rule.Discount) / 100, 0, nil
		}
		return false, 0, 0, nil
	case KindProductWise:
		item, ok := index[rule.ProductWise.ProductID]
		if !ok {
			return false, 0, 0, nil
		}
		return true, item.Price * float64(item.Quantity) * float64(rule.Discount) / 100, 0, nil
	case KindBxGy:
		ok, discount, eligible := evaluateBxGy(rule.BxGy, index)
		return ok, discount, eligible, nil
	default:
		return false, 0, 0, fmt.Errorf("%w: %q", ErrInvalidKind, rule.Kind)
	}
}

// evaluateBxGy applies the buy-side gate and computes the reward discount.
// Each buy requirement contributes floor(cartQty/requiredQty) repetitions and
// the contributions are summed across requirements, then capped by the
// repetition limit. Get-side products absent from the cart contribute zero.
func evaluateBxGy(rule *BxGyRule, index map[int64]cart.LineItem) (bool, float64, int) {
	totalBuyQuantity := 0
	for _, buy := range rule.BuyProducts {
		item, ok := index[buy.ProductID]
		if !ok || item.Quantity < buy.Quantity {
			return false, 0, 0
		}
		totalBuyQuantity += item.Quantity / buy.Quantity
	}

	eligible := totalBuyQuantity
	if rule.RepetitionLimit < eligible {
		eligible = rule.RepetitionLimit
	}

	var discount float64
	for _, get := range rule.GetProducts {
		if item, ok := index[get.ProductID]; ok {
			discount += item.Price * float64(eligible)
		}
	}
	return true, discount, eligible
}

func matchesGetProduct(rule *BxGyRule, productID int64) bool {
	for _, get := range rule.GetProducts {
		if get.ProductID == productID {
			return true
		}
	}
	return false
}
