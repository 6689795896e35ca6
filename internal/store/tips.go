package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/kv"
	"github.com/pkordes/babysteps/backend/internal/metrics"
	"github.com/pkordes/babysteps/backend/internal/seed"
)

// TipsKey is the backend key holding the community tip collection.
const TipsKey = "babysteps-community-tips"

const tipsLabel = "tips"

// Default result sizes for the ranked tip queries.
const (
	DefaultMostLikedLimit = 5
	DefaultRecentLimit    = 10
)

// TipStore defines the tip operations the service layer depends on.
type TipStore interface {
	// All returns every tip, newest insertion first.
	All() []domain.Tip

	// Get returns the tip with the given id.
	Get(id string) (domain.Tip, bool)

	// Add assigns id and createdAt when unset, then prepends the tip.
	Add(ctx context.Context, t domain.Tip) (domain.Tip, error)

	// Like increments the like counter of the tip with the given id.
	// Reports false when id is unknown.
	Like(ctx context.Context, id string) (domain.Tip, bool, error)

	// SetVerified sets the verified flag of the tip with the given id.
	// Reports false when id is unknown.
	SetVerified(ctx context.Context, id string, verified bool) (domain.Tip, bool, error)

	// ByMilestoneType returns tips whose milestone type equals the
	// lower-cased argument.
	ByMilestoneType(milestoneType string) []domain.Tip

	// MostLiked returns up to limit tips by descending likes; ties keep
	// store order.
	MostLiked(limit int) []domain.Tip

	// Recent returns up to limit tips by descending createdAt.
	Recent(limit int) []domain.Tip
}

// Tips is the persistent community tip collection.
type Tips struct {
	list *list[domain.Tip]
	opts options
}

// compile-time check: *Tips must satisfy TipStore.
var _ TipStore = (*Tips)(nil)

// OpenTips constructs the tip store and loads it from backend, seeding
// sample data when nothing usable is persisted.
func OpenTips(ctx context.Context, backend kv.Store, opts ...Option) *Tips {
	o := newOptions(opts)
	t := &Tips{
		list: newList(backend, TipsKey, tipsLabel,
			func(t domain.Tip) string { return t.ID },
			seed.Tips, o.logger),
		opts: o,
	}
	t.list.load(ctx, o.now())
	return t
}

// All returns every tip, newest insertion first.
func (s *Tips) All() []domain.Tip {
	return s.list.snapshot()
}

// Get returns the tip with the given id.
func (s *Tips) Get(id string) (domain.Tip, bool) {
	return s.list.find(id)
}

// Add stores a new tip at the front of the collection. Negative like
// counts are clamped to zero; a taken id is replaced with a fresh one.
func (s *Tips) Add(ctx context.Context, t domain.Tip) (domain.Tip, error) {
	if err := wait(ctx, s.opts.latency.Add); err != nil {
		return domain.Tip{}, fmt.Errorf("store.Tips.Add: %w", err)
	}

	now := s.opts.now()
	added := s.list.prepend(ctx, t, func(t *domain.Tip, taken func(string) bool) {
		if t.ID == "" || taken(t.ID) {
			t.ID = s.opts.newID()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.Likes < 0 {
			t.Likes = 0
		}
	})
	metrics.Mutations.WithLabelValues(tipsLabel, "add").Inc()
	return added, nil
}

// Like adds one like to the tip with the given id.
func (s *Tips) Like(ctx context.Context, id string) (domain.Tip, bool, error) {
	if err := wait(ctx, s.opts.latency.Like); err != nil {
		return domain.Tip{}, false, fmt.Errorf("store.Tips.Like: %w", err)
	}

	liked, ok := s.list.modify(ctx, id, func(t *domain.Tip) { t.Likes++ })
	if ok {
		metrics.Mutations.WithLabelValues(tipsLabel, "like").Inc()
	}
	return liked, ok, nil
}

// SetVerified marks the tip with the given id as verified or not.
// Nothing in the public API calls this; it backs the admin CLI.
func (s *Tips) SetVerified(ctx context.Context, id string, verified bool) (domain.Tip, bool, error) {
	if err := wait(ctx, s.opts.latency.Update); err != nil {
		return domain.Tip{}, false, fmt.Errorf("store.Tips.SetVerified: %w", err)
	}

	tip, ok := s.list.modify(ctx, id, func(t *domain.Tip) { t.Verified = verified })
	if ok {
		metrics.Mutations.WithLabelValues(tipsLabel, "verify").Inc()
	}
	return tip, ok, nil
}

// ByMilestoneType returns tips whose milestone type equals the lower-cased
// argument, in store order.
func (s *Tips) ByMilestoneType(milestoneType string) []domain.Tip {
	want := strings.ToLower(milestoneType)
	return s.list.filter(func(t domain.Tip) bool { return t.MilestoneType == want })
}

// MostLiked returns up to limit tips by descending likes. Ties keep store
// order. A non-positive limit means DefaultMostLikedLimit.
func (s *Tips) MostLiked(limit int) []domain.Tip {
	if limit <= 0 {
		limit = DefaultMostLikedLimit
	}
	tips := s.list.snapshot()
	slices.SortStableFunc(tips, func(a, b domain.Tip) int {
		return cmp.Compare(b.Likes, a.Likes)
	})
	return head(tips, limit)
}

// Recent returns up to limit tips by descending creation time. Ties keep
// store order. A non-positive limit means DefaultRecentLimit.
func (s *Tips) Recent(limit int) []domain.Tip {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	tips := s.list.snapshot()
	slices.SortStableFunc(tips, func(a, b domain.Tip) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return head(tips, limit)
}

// Subscribe registers fn to receive the full collection after every applied
// mutation. fn must not mutate the store. Call the returned function to stop.
func (s *Tips) Subscribe(fn func([]domain.Tip)) func() {
	return s.list.subscribe(fn)
}

// Sync pulls in changes another process wrote to the backend, such as a
// verification made from the admin CLI, and reports whether the collection
// changed.
func (s *Tips) Sync(ctx context.Context) bool {
	return s.list.sync(ctx)
}

// Reset deletes the persisted collection and re-seeds it.
func (s *Tips) Reset(ctx context.Context) error {
	if err := s.list.reset(ctx, s.opts.now()); err != nil {
		return fmt.Errorf("store.Tips.Reset: %w", err)
	}
	return nil
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
