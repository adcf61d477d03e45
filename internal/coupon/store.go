package coupon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists coupons in Postgres. All kinds share one table with a kind
// discriminator and nullable kind-specific columns; bxgy product lists are
// stored as JSONB.
type PGStore struct {
	Pool *pgxpool.Pool
}

const couponColumns = `id, kind, discount, threshold, product_id, buy_products, get_products, repetition_limit, created_at, updated_at`

// Create inserts a new coupon and returns the stored row.
func (s *PGStore) Create(ctx context.Context, rule Rule) (Rule, error) {
	if s == nil || s.Pool == nil {
		return Rule{}, errors.New("coupon store not configured")
	}
	row, err := couponRowFromRule(rule)
	if err != nil {
		return Rule{}, err
	}
	row.id = uuid.New()
	query := `
		INSERT INTO coupons (id, kind, discount, threshold, product_id, buy_products, get_products, repetition_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + couponColumns
	return s.scanOne(s.Pool.QueryRow(ctx, query,
		row.id, row.kind, row.discount, row.threshold, row.productID, row.buyProducts, row.getProducts, row.repetitionLimit,
	))
}

// Get fetches one coupon by id, mapping a missing row to ErrNotFound.
func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (Rule, error) {
	if s == nil || s.Pool == nil {
		return Rule{}, errors.New("coupon store not configured")
	}
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	rule, err := s.scanOne(s.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, fmt.Errorf("coupon %s: %w", id, ErrNotFound)
		}
		return Rule{}, err
	}
	return rule, nil
}

// List returns every coupon ordered by creation time.
func (s *PGStore) List(ctx context.Context) ([]Rule, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("coupon store not configured")
	}
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at, id`
	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]Rule, 0)
	for rows.Next() {
		rule, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// Update replaces the mutable columns of an existing coupon.
func (s *PGStore) Update(ctx context.Context, rule Rule) (Rule, error) {
	if s == nil || s.Pool == nil {
		return Rule{}, errors.New("coupon store not configured")
	}
	row, err := couponRowFromRule(rule)
	if err != nil {
		return Rule{}, err
	}
	query := `
		UPDATE coupons
		SET discount = $2, threshold = $3, product_id = $4, buy_products = $5, get_products = $6,
		    repetition_limit = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + couponColumns
	updated, err := s.scanOne(s.Pool.QueryRow(ctx, query,
		rule.ID, row.discount, row.threshold, row.productID, row.buyProducts, row.getProducts, row.repetitionLimit,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, fmt.Errorf("coupon %s: %w", rule.ID, ErrNotFound)
		}
		return Rule{}, err
	}
	return updated, nil
}

// Delete removes a coupon, reporting ErrNotFound when no row matched.
func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Pool == nil {
		return errors.New("coupon store not configured")
	}
	tag, err := s.Pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("coupon %s: %w", id, ErrNotFound)
	}
	return nil
}

type couponRow struct {
	id              uuid.UUID
	kind            string
	discount        int
	threshold       *float64
	productID       *int64
	buyProducts     []byte
	getProducts     []byte
	repetitionLimit *int
}

func couponRowFromRule(rule Rule) (couponRow, error) {
	row := couponRow{id: rule.ID, kind: string(rule.Kind), discount: rule.Discount}
	switch rule.Kind {
	case KindCartWise:
		threshold := rule.CartWise.Threshold
		row.threshold = &threshold
	case KindProductWise:
		productID := rule.ProductWise.ProductID
		row.productID = &productID
	case KindBxGy:
		buy, err := json.Marshal(rule.BxGy.BuyProducts)
		if err != nil {
			return couponRow{}, fmt.Errorf("encode buy products: %w", err)
		}
		get, err := json.Marshal(rule.BxGy.GetProducts)
		if err != nil {
			return couponRow{}, fmt.Errorf("encode get products: %w", err)
		}
		limit := rule.BxGy.RepetitionLimit
		row.buyProducts = buy
		row.getProducts = get
		row.repetitionLimit = &limit
	default:
		return couponRow{}, fmt.Errorf("%w: %q", ErrInvalidKind, rule.Kind)
	}
	return row, nil
}

func (s *PGStore) scanOne(row pgx.Row) (Rule, error) {
	var (
		rule Rule
		kind string
		r    couponRow
	)
	if err := row.Scan(&rule.ID, &kind, &rule.Discount, &r.threshold, &r.productID,
		&r.buyProducts, &r.getProducts, &r.repetitionLimit, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
		return Rule{}, err
	}
	rule.Kind = Kind(kind)
	switch rule.Kind {
	case KindCartWise:
		cw := CartWiseRule{}
		if r.threshold != nil {
			cw.Threshold = *r.threshold
		}
		rule.CartWise = &cw
	case KindProductWise:
		pw := ProductWiseRule{}
		if r.productID != nil {
			pw.ProductID = *r.productID
		}
		rule.ProductWise = &pw
	case KindBxGy:
		bx := BxGyRule{}
		if len(r.buyProducts) > 0 {
			if err := json.Unmarshal(r.buyProducts, &bx.BuyProducts); err != nil {
				return Rule{}, fmt.Errorf("decode buy products: %w", err)
			}
		}
		if len(r.getProducts) > 0 {
			if err := json.Unmarshal(r.getProducts, &bx.GetProducts); err != nil {
				return Rule{}, fmt.Errorf("decode get products: %w", err)
			}
		}
		if r.repetitionLimit != nil {
			bx.RepetitionLimit = *r.repetitionLimit
		}
		rule.BxGy = &bx
	default:
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return rule, nil
}
