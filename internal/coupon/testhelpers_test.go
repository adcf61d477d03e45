package coupon_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-promo/internal/coupon"
)

// memStore is an in-memory Store used by service and handler tests.
type memStore struct {
	mu    sync.Mutex
	rules []coupon.Rule
}

func (m *memStore) Create(_ context.Context, rule coupon.Rule) (coupon.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rule.ID = uuid.New()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	m.rules = append(m.rules, rule)
	return rule, nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (coupon.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rule := range m.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return coupon.Rule{}, fmt.Errorf("coupon %s: %w", id, coupon.ErrNotFound)
}

func (m *memStore) List(context.Context) ([]coupon.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]coupon.Rule, len(m.rules))
	copy(out, m.rules)
	return out, nil
}

func (m *memStore) Update(_ context.Context, rule coupon.Rule) (coupon.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].ID == rule.ID {
			rule.CreatedAt = m.rules[i].CreatedAt
			rule.UpdatedAt = time.Now()
			m.rules[i] = rule
			return rule, nil
		}
	}
	return coupon.Rule{}, fmt.Errorf("coupon %s: %w", rule.ID, coupon.ErrNotFound)
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("coupon %s: %w", id, coupon.ErrNotFound)
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func floatPtr(v float64) *float64 { return &v }
