package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/kv"
	"github.com/pkordes/babysteps/backend/internal/metrics"
	"github.com/pkordes/babysteps/backend/internal/seed"
)

// MilestonesKey is the backend key holding the milestone collection.
const MilestonesKey = "babysteps-milestones"

const milestonesLabel = "milestones"

// MilestoneStore defines the milestone operations the service layer depends on.
// Depending on this interface rather than *Milestones lets services be tested
// with a stub.
type MilestoneStore interface {
	// All returns every milestone, newest insertion first.
	All() []domain.Milestone

	// Get returns the milestone with the given id.
	Get(id string) (domain.Milestone, bool)

	// Add assigns id, createdAt and a default category when unset, then
	// prepends the milestone. The only error is ctx cancellation during the
	// simulated latency, in which case nothing is stored.
	Add(ctx context.Context, m domain.Milestone) (domain.Milestone, error)

	// Update merges patch into the milestone with the given id and stamps
	// updatedAt. Reports false, changing nothing, when id is unknown.
	Update(ctx context.Context, id string, patch domain.MilestonePatch) (domain.Milestone, bool, error)

	// Remove deletes the milestone with the given id. Reports false when
	// id is unknown.
	Remove(ctx context.Context, id string) (bool, error)

	// ByCategory returns milestones with exactly the given category.
	ByCategory(c domain.Category) []domain.Milestone

	// ByDateRange returns milestones dated within [from, to], inclusive.
	ByDateRange(from, to time.Time) []domain.Milestone
}

// Milestones is the persistent milestone collection.
type Milestones struct {
	list *list[domain.Milestone]
	opts options
}

// compile-time check: *Milestones must satisfy MilestoneStore.
var _ MilestoneStore = (*Milestones)(nil)

// OpenMilestones constructs the milestone store and loads it from backend,
// seeding sample data when nothing usable is persisted.
func OpenMilestones(ctx context.Context, backend kv.Store, opts ...Option) *Milestones {
	o := newOptions(opts)
	m := &Milestones{
		list: newList(backend, MilestonesKey, milestonesLabel,
			func(m domain.Milestone) string { return m.ID },
			seed.Milestones, o.logger),
		opts: o,
	}
	m.list.normalize = func(m *domain.Milestone) { m.Category = m.Category.OrDefault() }
	m.list.load(ctx, o.now())
	return m
}

// All returns every milestone, newest insertion first.
func (s *Milestones) All() []domain.Milestone {
	return s.list.snapshot()
}

// Get returns the milestone with the given id.
func (s *Milestones) Get(id string) (domain.Milestone, bool) {
	return s.list.find(id)
}

// Add stores a new milestone at the front of the collection.
// A caller-supplied id that is already taken is replaced with a fresh one.
func (s *Milestones) Add(ctx context.Context, m domain.Milestone) (domain.Milestone, error) {
	if err := wait(ctx, s.opts.latency.Add); err != nil {
		return domain.Milestone{}, fmt.Errorf("store.Milestones.Add: %w", err)
	}

	now := s.opts.now()
	added := s.list.prepend(ctx, m, func(m *domain.Milestone, taken func(string) bool) {
		if m.ID == "" || taken(m.ID) {
			m.ID = s.opts.newID()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.Category == "" {
			m.Category = domain.CategoryGeneral
		}
	})
	metrics.Mutations.WithLabelValues(milestonesLabel, "add").Inc()
	return added, nil
}

// Update merges patch into the milestone with the given id.
func (s *Milestones) Update(ctx context.Context, id string, patch domain.MilestonePatch) (domain.Milestone, bool, error) {
	if err := wait(ctx, s.opts.latency.Update); err != nil {
		return domain.Milestone{}, false, fmt.Errorf("store.Milestones.Update: %w", err)
	}

	now := s.opts.now()
	updated, ok := s.list.modify(ctx, id, func(m *domain.Milestone) {
		*m = m.Apply(patch)
		m.UpdatedAt = &now
	})
	if ok {
		metrics.Mutations.WithLabelValues(milestonesLabel, "update").Inc()
	}
	return updated, ok, nil
}

// Remove deletes the milestone with the given id.
func (s *Milestones) Remove(ctx context.Context, id string) (bool, error) {
	if err := wait(ctx, s.opts.latency.Remove); err != nil {
		return false, fmt.Errorf("store.Milestones.Remove: %w", err)
	}

	ok := s.list.remove(ctx, id)
	if ok {
		metrics.Mutations.WithLabelValues(milestonesLabel, "remove").Inc()
	}
	return ok, nil
}

// ByCategory returns milestones with exactly the given category, in store order.
func (s *Milestones) ByCategory(c domain.Category) []domain.Milestone {
	return s.list.filter(func(m domain.Milestone) bool { return m.Category == c })
}

// ByDateRange returns milestones whose date lies within [from, to], in store order.
func (s *Milestones) ByDateRange(from, to time.Time) []domain.Milestone {
	return s.list.filter(func(m domain.Milestone) bool {
		return !m.Date.Before(from) && !m.Date.After(to)
	})
}

// Subscribe registers fn to receive the full collection after every applied
// mutation. fn must not mutate the store. Call the returned function to stop.
func (s *Milestones) Subscribe(fn func([]domain.Milestone)) func() {
	return s.list.subscribe(fn)
}

// Sync pulls in changes another process wrote to the backend, such as an
// admin reset, and reports whether the collection changed.
func (s *Milestones) Sync(ctx context.Context) bool {
	return s.list.sync(ctx)
}

// Reset deletes the persisted collection and re-seeds it.
func (s *Milestones) Reset(ctx context.Context) error {
	if err := s.list.reset(ctx, s.opts.now()); err != nil {
		return fmt.Errorf("store.Milestones.Reset: %w", err)
	}
	return nil
}
