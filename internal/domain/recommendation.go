package domain

// RecommendationType says which rule produced a recommendation.
type RecommendationType string

const (
	RecommendationWeekBased RecommendationType = "week-based"
	RecommendationMilestone RecommendationType = "milestone"
	RecommendationCommunity RecommendationType = "community"
)

// Priority is the display weight of a recommendation. It does not affect
// ordering.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is a derived suggestion. It is recomputed on every read and
// never persisted.
type Recommendation struct {
	Type        RecommendationType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
	Priority    Priority           `json:"priority"`
}
