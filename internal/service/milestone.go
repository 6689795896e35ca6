// Package service contains the business logic for the BabySteps API.
// Services trim and validate user input, then orchestrate store calls.
// The stores themselves stay permissive.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/seed"
	"github.com/pkordes/babysteps/backend/internal/store"
)

// MilestoneFilter narrows a milestone listing. Nil fields do not filter.
// From and To are inclusive.
type MilestoneFilter struct {
	Category *domain.Category
	From     *time.Time
	To       *time.Time
}

// MilestoneService implements business logic for Milestone operations.
type MilestoneService struct {
	milestones store.MilestoneStore
	now        func() time.Time
}

// NewMilestoneService constructs a MilestoneService backed by the provided store.
// now supplies the default date for milestones created without one.
func NewMilestoneService(m store.MilestoneStore, now func() time.Time) *MilestoneService {
	return &MilestoneService{milestones: m, now: now}
}

// Create validates and stores a new milestone. Title and notes are trimmed,
// an empty category becomes general and a zero date becomes now.
// Returns domain.ErrValidation for a blank title or an unknown category.
func (s *MilestoneService) Create(ctx context.Context, m domain.Milestone) (domain.Milestone, error) {
	m.Title = strings.TrimSpace(m.Title)
	m.Notes = strings.TrimSpace(m.Notes)
	if m.Category == "" {
		m.Category = domain.CategoryGeneral
	}
	if err := validateMilestone(m.Title, m.Category); err != nil {
		return domain.Milestone{}, fmt.Errorf("service.MilestoneService.Create: %w", err)
	}
	if m.Date.IsZero() {
		m.Date = s.now()
	}

	// Identity and timestamps are always assigned by the store.
	m.ID = ""
	m.CreatedAt = time.Time{}
	m.UpdatedAt = nil

	result, err := s.milestones.Add(ctx, m)
	if err != nil {
		return domain.Milestone{}, fmt.Errorf("service.MilestoneService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single milestone.
// Returns domain.ErrNotFound if no milestone with that ID exists.
func (s *MilestoneService) GetByID(_ context.Context, id string) (domain.Milestone, error) {
	m, ok := s.milestones.Get(id)
	if !ok {
		return domain.Milestone{}, fmt.Errorf("service.MilestoneService.GetByID: %w", domain.ErrNotFound)
	}
	return m, nil
}

// List returns the milestones matching f in store order (newest insertion
// first). Always returns a non-nil slice.
func (s *MilestoneService) List(_ context.Context, f MilestoneFilter) ([]domain.Milestone, error) {
	if f.Category != nil && !f.Category.Valid() {
		return nil, fmt.Errorf("service.MilestoneService.List: %w: unknown category %q", domain.ErrValidation, *f.Category)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, fmt.Errorf("service.MilestoneService.List: %w: to must not be before from", domain.ErrValidation)
	}

	var items []domain.Milestone
	switch {
	case f.Category != nil:
		items = s.milestones.ByCategory(*f.Category)
	case f.From != nil || f.To != nil:
		items = s.milestones.ByDateRange(rangeBounds(f))
	default:
		items = s.milestones.All()
	}

	if f.Category != nil && (f.From != nil || f.To != nil) {
		from, to := rangeBounds(f)
		items = slices.DeleteFunc(items, func(m domain.Milestone) bool {
			return m.Date.Before(from) || m.Date.After(to)
		})
	}

	if items == nil {
		return []domain.Milestone{}, nil
	}
	return items, nil
}

// ListPaged returns one page of the milestones matching f and the total count.
func (s *MilestoneService) ListPaged(ctx context.Context, f MilestoneFilter, p domain.PaginationParams) ([]domain.Milestone, int, error) {
	items, err := s.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return domain.Paginate(items, p), len(items), nil
}

// Update validates patch and merges it into the milestone with the given id.
// Returns domain.ErrValidation for a blank title or unknown category, and
// domain.ErrNotFound if the milestone does not exist.
func (s *MilestoneService) Update(ctx context.Context, id string, patch domain.MilestonePatch) (domain.Milestone, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return domain.Milestone{}, fmt.Errorf("service.MilestoneService.Update: %w: title is required", domain.ErrValidation)
		}
		patch.Title = &title
	}
	if patch.Notes != nil {
		notes := strings.TrimSpace(*patch.Notes)
		patch.Notes = &notes
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return domain.Milestone{}, fmt.Errorf("service.MilestoneService.Update: %w: unknown category %q", domain.ErrValidation, *patch.Category)
	}
	if patch.Date != nil && patch.Date.IsZero() {
		return domain.Milestone{}, fmt.Errorf("service.MilestoneService.Update: %w: date must not be empty", domain.ErrValidation)
	}

	result, ok, err := s.milestones.Update(ctx, id, patch)
	if err != nil {
		return domain.Milestone{}, fmt.Errorf("service.MilestoneService.Update: %w", err)
	}
	if !ok {
		return domain.Milestone{}, fmt.Errorf("service.MilestoneService.Update: %w", domain.ErrNotFound)
	}
	return result, nil
}

// Delete removes a milestone by ID.
// Returns domain.ErrNotFound if it does not exist (including a repeated delete).
func (s *MilestoneService) Delete(ctx context.Context, id string) error {
	ok, err := s.milestones.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("service.MilestoneService.Delete: %w", err)
	}
	if !ok {
		return fmt.Errorf("service.MilestoneService.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// Timeline returns every milestone ordered by date, most recent first.
// Milestones sharing a date keep store order.
func (s *MilestoneService) Timeline(_ context.Context) []domain.Milestone {
	items := s.milestones.All()
	slices.SortStableFunc(items, func(a, b domain.Milestone) int {
		return b.Date.Compare(a.Date)
	})
	return items
}

// Predefined returns the quick-select milestone titles.
func (s *MilestoneService) Predefined() []string {
	return seed.PredefinedMilestones()
}

func validateMilestone(title string, c domain.Category) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if !c.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, c)
	}
	return nil
}

// rangeBounds turns the optional filter bounds into a closed interval.
func rangeBounds(f MilestoneFilter) (time.Time, time.Time) {
	from := time.Time{}
	to := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	if f.From != nil {
		from = *f.From
	}
	if f.To != nil {
		to = *f.To
	}
	return from, to
}
