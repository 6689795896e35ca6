package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/store"
)

// TipService implements business logic for community tips.
// It also holds the milestone store because tips are looked up by the
// title of a selected milestone.
type TipService struct {
	tips       store.TipStore
	milestones store.MilestoneStore
}

// NewTipService constructs a TipService backed by the provided stores.
func NewTipService(tips store.TipStore, milestones store.MilestoneStore) *TipService {
	return &TipService{tips: tips, milestones: milestones}
}

// Create validates and stores a new tip. Content and author are trimmed and
// required; the milestone type is trimmed, lower-cased and defaults to
// "general". New tips always start with zero likes, unverified.
func (s *TipService) Create(ctx context.Context, tip domain.Tip) (domain.Tip, error) {
	tip.Content = strings.TrimSpace(tip.Content)
	tip.Author = strings.TrimSpace(tip.Author)
	if tip.Content == "" {
		return domain.Tip{}, fmt.Errorf("service.TipService.Create: %w: content is required", domain.ErrValidation)
	}
	if tip.Author == "" {
		return domain.Tip{}, fmt.Errorf("service.TipService.Create: %w: author is required", domain.ErrValidation)
	}

	tip.MilestoneType = strings.ToLower(strings.TrimSpace(tip.MilestoneType))
	if tip.MilestoneType == "" {
		tip.MilestoneType = domain.GeneralTipType
	}
	tip.ID = ""
	tip.Likes = 0
	tip.Verified = false
	tip.CreatedAt = time.Time{}

	result, err := s.tips.Add(ctx, tip)
	if err != nil {
		return domain.Tip{}, fmt.Errorf("service.TipService.Create: %w", err)
	}
	return result, nil
}

// List returns every tip, or only those for milestoneType when it is set.
// Always returns a non-nil slice.
func (s *TipService) List(_ context.Context, milestoneType string) []domain.Tip {
	var items []domain.Tip
	if strings.TrimSpace(milestoneType) == "" {
		items = s.tips.All()
	} else {
		items = s.tips.ByMilestoneType(strings.TrimSpace(milestoneType))
	}
	if items == nil {
		return []domain.Tip{}
	}
	return items
}

// ForMilestone returns the tips whose milestone type matches the title of the
// given milestone. Returns domain.ErrNotFound when the milestone does not exist.
func (s *TipService) ForMilestone(_ context.Context, milestoneID string) ([]domain.Tip, error) {
	m, ok := s.milestones.Get(milestoneID)
	if !ok {
		return nil, fmt.Errorf("service.TipService.ForMilestone: %w", domain.ErrNotFound)
	}
	items := s.tips.ByMilestoneType(m.Type())
	if items == nil {
		return []domain.Tip{}, nil
	}
	return items, nil
}

// Popular returns up to limit tips ordered by likes, most liked first.
// A non-positive limit falls back to store.DefaultMostLikedLimit.
func (s *TipService) Popular(_ context.Context, limit int) []domain.Tip {
	if limit <= 0 {
		limit = store.DefaultMostLikedLimit
	}
	return s.tips.MostLiked(limit)
}

// Recent returns up to limit tips, newest first.
// A non-positive limit falls back to store.DefaultRecentLimit.
func (s *TipService) Recent(_ context.Context, limit int) []domain.Tip {
	if limit <= 0 {
		limit = store.DefaultRecentLimit
	}
	return s.tips.Recent(limit)
}

// Like adds one like to the tip and returns it.
// Returns domain.ErrNotFound if no tip with that ID exists.
func (s *TipService) Like(ctx context.Context, id string) (domain.Tip, error) {
	tip, ok, err := s.tips.Like(ctx, id)
	if err != nil {
		return domain.Tip{}, fmt.Errorf("service.TipService.Like: %w", err)
	}
	if !ok {
		return domain.Tip{}, fmt.Errorf("service.TipService.Like: %w", domain.ErrNotFound)
	}
	return tip, nil
}

// SetVerified marks the tip as verified or clears the mark.
// Returns domain.ErrNotFound if no tip with that ID exists.
func (s *TipService) SetVerified(ctx context.Context, id string, verified bool) (domain.Tip, error) {
	tip, ok, err := s.tips.SetVerified(ctx, id, verified)
	if err != nil {
		return domain.Tip{}, fmt.Errorf("service.TipService.SetVerified: %w", err)
	}
	if !ok {
		return domain.Tip{}, fmt.Errorf("service.TipService.SetVerified: %w", domain.ErrNotFound)
	}
	return tip, nil
}
