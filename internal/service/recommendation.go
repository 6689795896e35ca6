package service

import (
	"context"
	"time"

	"github.com/pkordes/babysteps/backend/internal/recommend"
	"github.com/pkordes/babysteps/backend/internal/store"
)

// RecommendationService derives recommendations from the current milestones.
type RecommendationService struct {
	milestones store.MilestoneStore
	now        func() time.Time
}

// NewRecommendationService constructs a RecommendationService.
func NewRecommendationService(m store.MilestoneStore, now func() time.Time) *RecommendationService {
	return &RecommendationService{milestones: m, now: now}
}

// Get runs the recommendation engine against a snapshot of the milestones.
func (s *RecommendationService) Get(_ context.Context) recommend.Result {
	return recommend.Recommend(s.milestones.All(), s.now())
}
