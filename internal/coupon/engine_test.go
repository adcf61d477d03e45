package coupon

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-promo/internal/cart"
)

func cartWise(discount int, threshold float64) Rule {
	return Rule{ID: uuid.New(), Kind: KindCartWise, Discount: discount, CartWise: &CartWiseRule{Threshold: threshold}}
}

func productWise(discount int, productID int64) Rule {
	return Rule{ID: uuid.New(), Kind: KindProductWise, Discount: discount, ProductWise: &ProductWiseRule{ProductID: productID}}
}

func bxgy(buy, get []ProductQuantity, limit int) Rule {
	return Rule{ID: uuid.New(), Kind: KindBxGy, BxGy: &BxGyRule{BuyProducts: buy, GetProducts: get, RepetitionLimit: limit}}
}

func TestCartWiseThresholdIsStrict(t *testing.T) {
	rule := cartWise(10, 250)
	exactly := []cart.LineItem{{ProductID: 1, Quantity: 1, Price: 250}}
	results, err := FindApplicable(exactly, []Rule{rule})
	if err != nil {
		t.Fatalf("find applicable: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("total equal to threshold must not apply, got %+v", results)
	}

	above := []cart.LineItem{{ProductID: 1, Quantity: 1, Price: 250.01}}
	results, err = FindApplicable(above, []Rule{rule})
	if err != nil {
		t.Fatalf("find applicable: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("total above threshold must apply, got %+v", results)
	}
}

func TestCartWiseDiscountAmount(t *testing.T) {
	items := []cart.LineItem{{ProductID: 1, Quantity: 4, Price: 100}}
	results, err := FindApplicable(items, []Rule{cartWise(10, 250)})
	if err != nil {
		t.Fatalf("find applicable: %v", err)
	}
	if len(results) != 1 || results[0].Discount != 40 {
		t.Fatalf("expected discount 40, got %+v", results)
	}
}

func TestBxGyRepetitionsSumAcrossBuyRequirements(t *testing.T) {
	// Two independent buy requirements each contribute floor(qty/required);
	// the contributions add up instead of being intersected.
	rule := bxgy(
		[]ProductQuantity{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 2}},
		[]ProductQuantity{{ProductID: 3, Quantity: 1}},
		10,
	)
	items := []cart.LineItem{
		{ProductID: 1, Quantity: 4, Price: 50},
		{ProductID: 2, Quantity: 6, Price: 30},
		{ProductID: 3, Quantity: 1, Price: 25},
	}
	index := cart.Index(items)
	ok, discount, eligible := evaluateBxGy(rule.BxGy, index)
	if !ok {
		t.Fatal("expected rule to apply")
	}
	if eligible != 5 {
		t.Fatalf("expected eligible count 2+3=5, got %d", eligible)
	}
	if discount != 125 {
		t.Fatalf("expected discount 25*5=125, got %v", discount)
	}
}

func TestBxGyRepetitionLimitCapsCount(t *testing.T) {
	rule := bxgy(
		[]ProductQuantity{{ProductID: 1, Quantity: 2}},
		[]ProductQuantity{{ProductID: 2, Quantity: 1}},
		2,
	)
	items := []cart.LineItem{
		{ProductID: 1, Quantity: 5, Price: 100},
		{ProductID: 2, Quantity: 2, Price: 200},
	}
	ok, discount, eligible := evaluateBxGy(rule.BxGy, cart.Index(items))
	if !ok {
		t.Fatal("expected rule to apply")
	}
	if eligible != 2 {
		t.Fatalf("expected eligible count min(2,2)=2, got %d", eligible)
	}
	if discount != 400 {
		t.Fatalf("expected discount 200*2=400, got %v", discount)
	}
}

func TestBxGyInsufficientBuySideIsNotApplicable(t *testing.T) {
	rule := bxgy(
		[]ProductQuantity{{ProductID: 1, Quantity: 3}},
		[]ProductQuantity{{ProductID: 2, Quantity: 1}},
		1,
	)
	items := []cart.LineItem{
		{ProductID: 1, Quantity: 2, Price: 100},
		{ProductID: 2, Quantity: 1, Price: 50},
	}
	results, err := FindApplicable(items, []Rule{rule})
	if err != nil {
		t.Fatalf("find applicable: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("insufficient buy quantity must not apply, got %+v", results)
	}
}

func TestBxGyMissingGetProductContributesZero(t *testing.T) {
	rule := bxgy(
		[]ProductQuantity{{ProductID: 1, Quantity: 1}},
		[]ProductQuantity{{ProductID: 9, Quantity: 1}},
		3,
	)
	items := []cart.LineItem{{ProductID: 1, Quantity: 2, Price: 100}}
	ok, discount, eligible := evaluateBxGy(rule.BxGy, cart.Index(items))
	if !ok {
		t.Fatal("expected rule to apply: buy side is satisfied")
	}
	if discount != 0 {
		t.Fatalf("get product absent from cart must contribute zero, got %v", discount)
	}
	if eligible != 2 {
		t.Fatalf("expected eligible count 2, got %d", eligible)
	}
}

func TestApplyProductWise(t *testing.T) {
	rule := productWise(20, 1)
	items := []cart.LineItem{
		{ProductID: 1, Quantity: 2, Price: 100},
		{ProductID: 2, Quantity: 1, Price: 200},
	}
	result, err := Apply(rule, items)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.TotalDiscount != 40 {
		t.Fatalf("expected total discount 40, got %v", result.TotalDiscount)
	}
	if result.TotalPrice != 400 {
		t.Fatalf("expected total price 400, got %v", result.TotalPrice)
	}
	if result.FinalPrice != 360 {
		t.Fatalf("expected final price 360, got %v", result.FinalPrice)
	}
	if result.Items[0].TotalDiscount != 40 {
		t.Fatalf("matching line must carry the discount, got %v", result.Items[0].TotalDiscount)
	}
	if result.Items[1].TotalDiscount != 0 {
		t.Fatalf("unrelated line must carry zero discount, got %v", result.Items[1].TotalDiscount)
	}
}

func TestApplyCartWiseLeavesLinesUntouched(t *testing.T) {
	rule := cartWise(10, 250)
	items := []cart.LineItem{
		{ProductID: 1, Quantity: 2, Price: 100},
		{ProductID: 2, Quantity: 1, Price: 200},
	}
	result, err := Apply(rule, items)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.TotalDiscount != 40 || result.TotalPrice != 400 || result.FinalPrice != 360 {
		t.Fatalf("unexpected totals: %+v", result)
	}
	for _, line := range result.Items {
		if line.TotalDiscount != 0 {
			t.Fatalf("cart-wise discount must not be attributed to a line: %+v", line)
		}
	}
}

func TestApplyBxGyGrantsFreeUnitsAndInflatesTotal(t *testing.T) {
	rule := bxgy(
		[]ProductQuantity{{ProductID: 1, Quantity: 2}},
		[]ProductQuantity{{ProductID: 2, Quantity: 1}},
		2,
	)
	items := []cart.LineItem{
		{ProductID: 1, Quantity: 5, Price: 100},
		{ProductID: 2, Quantity: 2, Price: 200},
	}
	result, err := Apply(rule, items)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.TotalDiscount != 400 {
		t.Fatalf("expected discount 400, got %v", result.TotalDiscount)
	}
	// original cart total is 900; free items inflate the reported total while
	// the final price stays at the original sum.
	if result.FinalPrice != 900 {
		t.Fatalf("expected final price 900, got %v", result.FinalPrice)
	}
	if result.TotalPrice != 1300 {
		t.Fatalf("expected inflated total price 1300, got %v", result.TotalPrice)
	}
	if result.Items[1].Quantity != 4 {
		t.Fatalf("expected reward line quantity 2+2=4, got %d", result.Items[1].Quantity)
	}
	if result.Items[0].Quantity != 5 {
		t.Fatalf("buy line quantity must be unchanged, got %d", result.Items[0].Quantity)
	}
}

func TestApplyBxGyFlatRewardAttribution(t *testing.T) {
	// With multiple reward products in the cart, every matching line carries
	// the full computed discount; it is not split between them.
	rule := bxgy(
		[]ProductQuantity{{ProductID: 1, Quantity: 1}},
		[]ProductQuantity{{ProductID: 2, Quantity: 1}, {ProductID: 3, Quantity: 1}},
		1,
	)
	items := []cart.LineItem{
		{ProductID: 1, Quantity: 1, Price: 10},
		{ProductID: 2, Quantity: 1, Price: 40},
		{ProductID: 3, Quantity: 1, Price: 60},
	}
	result, err := Apply(rule, items)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.TotalDiscount != 100 {
		t.Fatalf("expected discount 40+60=100, got %v", result.TotalDiscount)
	}
	if result.Items[1].TotalDiscount != 100 || result.Items[2].TotalDiscount != 100 {
		t.Fatalf("each reward line must carry the full discount: %+v", result.Items)
	}
}

func TestFindApplicableSortsDescendingAndStable(t *testing.T) {
	small := cartWise(5, 0)
	big := productWise(50, 1)
	tieA := cartWise(10, 0)
	tieB := cartWise(10, 0)
	items := []cart.LineItem{{ProductID: 1, Quantity: 1, Price: 100}}

	results, err := FindApplicable(items, []Rule{small, tieA, big, tieB})
	if err != nil {
		t.Fatalf("find applicable: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected four results, got %d", len(results))
	}
	if results[0].CouponID != big.ID {
		t.Fatalf("largest discount must sort first: %+v", results)
	}
	if results[1].CouponID != tieA.ID || results[2].CouponID != tieB.ID {
		t.Fatalf("equal discounts must keep input order: %+v", results)
	}
	if results[3].CouponID != small.ID {
		t.Fatalf("smallest discount must sort last: %+v", results)
	}
}

func TestFindApplicableEmptyCart(t *testing.T) {
	results, err := FindApplicable(nil, []Rule{cartWise(10, 0), productWise(10, 1)})
	if err != nil {
		t.Fatalf("find applicable: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("empty cart must yield no applicable coupons, got %+v", results)
	}
}

func TestFindApplicableIsIdempotent(t *testing.T) {
	rules := []Rule{cartWise(10, 0), productWise(20, 1)}
	items := []cart.LineItem{{ProductID: 1, Quantity: 2, Price: 100}}
	first, err := FindApplicable(items, rules)
	if err != nil {
		t.Fatalf("find applicable: %v", err)
	}
	second, err := FindApplicable(items, rules)
	if err != nil {
		t.Fatalf("find applicable: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("evaluation must be idempotent: %+v vs %+v", first, second)
	}
}

func TestUnknownKindIsRejected(t *testing.T) {
	rule := Rule{ID: uuid.New(), Kind: Kind("mystery")}
	if _, err := FindApplicable([]cart.LineItem{{ProductID: 1, Quantity: 1, Price: 1}}, []Rule{rule}); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind from evaluator, got %v", err)
	}
	if _, err := Apply(rule, nil); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind from apply, got %v", err)
	}
}

func TestRuleValidate(t *testing.T) {
	valid := bxgy(
		[]ProductQuantity{{ProductID: 1, Quantity: 2}},
		[]ProductQuantity{{ProductID: 2, Quantity: 1}},
		2,
	)
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid rule, got %v", err)
	}

	overPercent := cartWise(120, 10)
	if err := overPercent.Validate(); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for discount > 100, got %v", err)
	}

	missingLimit := valid
	missingLimit.BxGy = &BxGyRule{BuyProducts: valid.BxGy.BuyProducts, GetProducts: valid.BxGy.GetProducts}
	if err := missingLimit.Validate(); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for missing repetition limit, got %v", err)
	}

	unknown := Rule{Kind: Kind("mystery")}
	if err := unknown.Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
