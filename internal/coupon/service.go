package coupon

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-promo/internal/cart"
	"github.com/noah-isme/backend-promo/internal/obs"
)

// Store captures the persistence methods required by the coupon service.
type Store interface {
	Create(ctx context.Context, rule Rule) (Rule, error)
	Get(ctx context.Context, id uuid.UUID) (Rule, error)
	List(ctx context.Context) ([]Rule, error)
	Update(ctx context.Context, rule Rule) (Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Payload is the inbound coupon definition shape shared by create and update.
type Payload struct {
	Type    string         `json:"type" validate:"required"`
	Details PayloadDetails `json:"details"`
}

// PayloadDetails carries the kind-specific fields. Absent fields stay nil so
// updates can distinguish "not provided" from zero values.
type PayloadDetails struct {
	Threshold       *float64          `json:"threshold" validate:"omitempty,gte=0"`
	Discount        *int              `json:"discount" validate:"omitempty,gte=0,lte=100"`
	ProductID       *int64            `json:"product_id"`
	BuyProducts     []ProductQuantity `json:"buy_products" validate:"omitempty,dive"`
	GetProducts     []ProductQuantity `json:"get_products" validate:"omitempty,dive"`
	RepetitionLimit *int              `json:"repetition_limit" validate:"omitempty,gt=0"`
}

// Summary is the trimmed coupon representation returned on creation.
type Summary struct {
	ID       uuid.UUID `json:"id"`
	Kind     Kind      `json:"type"`
	Discount int       `json:"discount"`
}

// Service orchestrates coupon CRUD and the evaluation entry points.
type Service struct {
	Store Store
	Cache *Cache
}

// Create validates the payload, persists the rule and invalidates the list cache.
func (s *Service) Create(ctx context.Context, payload Payload) (Rule, error) {
	if s == nil || s.Store == nil {
		return Rule{}, errors.New("coupon service not configured")
	}
	rule, err := buildRule(payload)
	if err != nil {
		return Rule{}, err
	}
	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}
	created, err := s.Store.Create(ctx, rule)
	if err != nil {
		return Rule{}, fmt.Errorf("create coupon: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

// Get returns one coupon by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Rule, error) {
	if s == nil || s.Store == nil {
		return Rule{}, errors.New("coupon service not configured")
	}
	return s.Store.Get(ctx, id)
}

// List returns every coupon, served from the cache when warm.
func (s *Service) List(ctx context.Context) ([]Rule, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("coupon service not configured")
	}
	if s.Cache != nil {
		if rules, ok, err := s.Cache.GetList(ctx); err == nil && ok {
			return rules, nil
		}
	}
	rules, err := s.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	if s.Cache != nil {
		_ = s.Cache.SetList(ctx, rules)
	}
	return rules, nil
}

// Update merges the provided details into an existing coupon. Provided fields
// replace the stored ones; bxgy buy/get product lists are replaced wholesale
// when present.
func (s *Service) Update(ctx context.Context, id uuid.UUID, payload Payload) (Rule, error) {
	if s == nil || s.Store == nil {
		return Rule{}, errors.New("coupon service not configured")
	}
	existing, err := s.Store.Get(ctx, id)
	if err != nil {
		return Rule{}, err
	}
	merged := mergeRule(existing, payload.Details)
	if err := merged.Validate(); err != nil {
		return Rule{}, err
	}
	updated, err := s.Store.Update(ctx, merged)
	if err != nil {
		return Rule{}, fmt.Errorf("update coupon: %w", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a coupon by id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("coupon service not configured")
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Applicable evaluates every stored coupon against the cart.
func (s *Service) Applicable(ctx context.Context, items []cart.LineItem) ([]Applicable, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("coupon service not configured")
	}
	if err := cart.Validate(items); err != nil {
		return nil, err
	}
	rules, err := s.List(ctx)
	if err != nil {
		obs.CountCouponEvaluation("error")
		return nil, err
	}
	results, err := FindApplicable(items, rules)
	if err != nil {
		obs.CountCouponEvaluation("error")
		return nil, err
	}
	obs.CountCouponEvaluation("ok")
	return results, nil
}

// Apply fetches one coupon and produces the itemized applied cart.
func (s *Service) Apply(ctx context.Context, id uuid.UUID, items []cart.LineItem) (AppliedCart, error) {
	if s == nil || s.Store == nil {
		return AppliedCart{}, errors.New("coupon service not configured")
	}
	if err := cart.Validate(items); err != nil {
		return AppliedCart{}, err
	}
	rule, err := s.Store.Get(ctx, id)
	if err != nil {
		obs.CountCouponApplication("", "not_found")
		return AppliedCart{}, err
	}
	result, err := Apply(rule, items)
	if err != nil {
		obs.CountCouponApplication(string(rule.Kind), "error")
		return AppliedCart{}, err
	}
	obs.CountCouponApplication(string(rule.Kind), "ok")
	return result, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.Cache != nil {
		_ = s.Cache.Invalidate(ctx)
	}
}

func buildRule(payload Payload) (Rule, error) {
	details := payload.Details
	rule := Rule{Kind: Kind(payload.Type)}
	if details.Discount != nil {
		rule.Discount = *details.Discount
	}
	switch rule.Kind {
	case KindCartWise:
		if details.Threshold == nil {
			return Rule{}, fmt.Errorf("threshold is required for cart-wise coupons: %w", ErrInvalidRule)
		}
		if details.Discount == nil {
			return Rule{}, fmt.Errorf("discount is required for cart-wise coupons: %w", ErrInvalidRule)
		}
		rule.CartWise = &CartWiseRule{Threshold: *details.Threshold}
	case KindProductWise:
		if details.ProductID == nil {
			return Rule{}, fmt.Errorf("product_id is required for product-wise coupons: %w", ErrInvalidRule)
		}
		if details.Discount == nil {
			return Rule{}, fmt.Errorf("discount is required for product-wise coupons: %w", ErrInvalidRule)
		}
		rule.ProductWise = &ProductWiseRule{ProductID: *details.ProductID}
	case KindBxGy:
		bx := &BxGyRule{
			BuyProducts: details.BuyProducts,
			GetProducts: details.GetProducts,
		}
		if details.RepetitionLimit != nil {
			bx.RepetitionLimit = *details.RepetitionLimit
		}
		rule.BxGy = bx
	default:
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidKind, payload.Type)
	}
	return rule, nil
}

func mergeRule(existing Rule, details PayloadDetails) Rule {
	merged := existing
	switch existing.Kind {
	case KindCartWise:
		cw := *existing.CartWise
		if details.Threshold != nil {
			cw.Threshold = *details.Threshold
		}
		if details.Discount != nil {
			merged.Discount = *details.Discount
		}
		merged.CartWise = &cw
	case KindProductWise:
		pw := *existing.ProductWise
		if details.ProductID != nil {
			pw.ProductID = *details.ProductID
		}
		if details.Discount != nil {
			merged.Discount = *details.Discount
		}
		merged.ProductWise = &pw
	case KindBxGy:
		bx := *existing.BxGy
		if details.RepetitionLimit != nil {
			bx.RepetitionLimit = *details.RepetitionLimit
		}
		if details.BuyProducts != nil {
			bx.BuyProducts = details.BuyProducts
		}
		if details.GetProducts != nil {
			bx.GetProducts = details.GetProducts
		}
		merged.BxGy = &bx
	}
	return merged
}
