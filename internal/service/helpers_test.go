package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/kv"
	"github.com/pkordes/babysteps/backend/internal/store"
)

// now is the fixed clock for every service test.
var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

// openStores returns seeded milestone and tip stores over a fresh memory backend.
func openStores(t *testing.T) (*store.Milestones, *store.Tips) {
	t.Helper()
	backend := kv.NewMemory()
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
	opts := []store.Option{store.WithClock(clock), store.WithIDGenerator(ids)}
	return store.OpenMilestones(context.Background(), backend, opts...),
		store.OpenTips(context.Background(), backend, opts...)
}

// ---- mock stores -----------------------------------------------------------

// mockMilestoneStore is a hand-written test double for store.MilestoneStore.
// Each method is a function field; set only the ones your test needs.
type mockMilestoneStore struct {
	all         func() []domain.Milestone
	get         func(id string) (domain.Milestone, bool)
	add         func(ctx context.Context, m domain.Milestone) (domain.Milestone, error)
	update      func(ctx context.Context, id string, p domain.MilestonePatch) (domain.Milestone, bool, error)
	remove      func(ctx context.Context, id string) (bool, error)
	byCategory  func(c domain.Category) []domain.Milestone
	byDateRange func(from, to time.Time) []domain.Milestone
}

func (m *mockMilestoneStore) All() []domain.Milestone { return m.all() }
func (m *mockMilestoneStore) Get(id string) (domain.Milestone, bool) {
	return m.get(id)
}
func (m *mockMilestoneStore) Add(ctx context.Context, ms domain.Milestone) (domain.Milestone, error) {
	return m.add(ctx, ms)
}
func (m *mockMilestoneStore) Update(ctx context.Context, id string, p domain.MilestonePatch) (domain.Milestone, bool, error) {
	return m.update(ctx, id, p)
}
func (m *mockMilestoneStore) Remove(ctx context.Context, id string) (bool, error) {
	return m.remove(ctx, id)
}
func (m *mockMilestoneStore) ByCategory(c domain.Category) []domain.Milestone {
	return m.byCategory(c)
}
func (m *mockMilestoneStore) ByDateRange(from, to time.Time) []domain.Milestone {
	return m.byDateRange(from, to)
}

// compile-time check: mockMilestoneStore must satisfy store.MilestoneStore.
var _ store.MilestoneStore = (*mockMilestoneStore)(nil)

// mockTipStore is a hand-written test double for store.TipStore.
type mockTipStore struct {
	all             func() []domain.Tip
	get             func(id string) (domain.Tip, bool)
	add             func(ctx context.Context, t domain.Tip) (domain.Tip, error)
	like            func(ctx context.Context, id string) (domain.Tip, bool, error)
	setVerified     func(ctx context.Context, id string, v bool) (domain.Tip, bool, error)
	byMilestoneType func(mt string) []domain.Tip
	mostLiked       func(limit int) []domain.Tip
	recent          func(limit int) []domain.Tip
}

func (m *mockTipStore) All() []domain.Tip { return m.all() }
func (m *mockTipStore) Get(id string) (domain.Tip, bool) { return m.get(id) }
func (m *mockTipStore) ByMilestoneType(mt string) []domain.Tip { return m.byMilestoneType(mt) }
func (m *mockTipStore) MostLiked(limit int) []domain.Tip { return m.mostLiked(limit) }
func (m *mockTipStore) Recent(limit int) []domain.Tip { return m.recent(limit) }
func (m *mockTipStore) Add(ctx context.Context, t domain.Tip) (domain.Tip, error) {
	return m.add(ctx, t)
}
func (m *mockTipStore) Like(ctx context.Context, id string) (domain.Tip, bool, error) {
	return m.like(ctx, id)
}
func (m *mockTipStore) SetVerified(ctx context.Context, id string, v bool) (domain.Tip, bool, error) {
	return m.setVerified(ctx, id, v)
}

// compile-time check: mockTipStore must satisfy store.TipStore.
var _ store.TipStore = (*mockTipStore)(nil)

func ptr[T any](v T) *T { return &v }
