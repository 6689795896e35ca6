// Package recommend derives personalised suggestions from a milestone list.
// Everything here is a pure function of its arguments: the current time is
// passed in rather than read from the clock.
package recommend

import (
	"strings"
	"time"

	"github.com/pkordes/babysteps/backend/internal/domain"
)

// MaxRecommendations caps the length of every result.
const MaxRecommendations = 4

// BaseWeek is the pregnancy week assumed at the anchor milestone.
const BaseWeek = 8

const week = 7 * 24 * time.Hour

// anchorKeywords identify the milestone the week estimate counts from.
var anchorKeywords = []string{"ultrasound", "first appointment"}

var (
	firstTrimester = domain.Recommendation{
		Type:        domain.RecommendationWeekBased,
		Title:       "First Trimester Care",
		Description: "Focus on prenatal vitamins and regular checkups",
		Icon:        "🌱",
		Priority:    domain.PriorityHigh,
	}
	secondTrimester = domain.Recommendation{
		Type:        domain.RecommendationWeekBased,
		Title:       "Second Trimester Planning",
		Description: "Consider genetic testing and start thinking about baby gear",
		Icon:        "📋",
		Priority:    domain.PriorityMedium,
	}
	thirdTrimester = domain.Recommendation{
		Type:        domain.RecommendationWeekBased,
		Title:       "Third Trimester Prep",
		Description: "Hospital bag, birth plan, and nursery setup",
		Icon:        "🎒",
		Priority:    domain.PriorityHigh,
	}
	community = domain.Recommendation{
		Type:        domain.RecommendationCommunity,
		Title:       "Join BabySteps Community",
		Description: "Connect with other parents at similar stages",
		Icon:        "👥",
		Priority:    domain.PriorityLow,
	}
)

// gap pairs a title keyword with the recommendation shown while no
// milestone title contains it. Order matters: it is the output order.
type gap struct {
	keyword string
	rec     domain.Recommendation
}

var gaps = []gap{
	{"prenatal vitamins", domain.Recommendation{
		Type:        domain.RecommendationMilestone,
		Title:       "Start Prenatal Vitamins",
		Description: "Essential nutrients for you and baby",
		Icon:        "💊",
		Priority:    domain.PriorityHigh,
	}},
	{"birth classes", domain.Recommendation{
		Type:        domain.RecommendationMilestone,
		Title:       "Consider Birth Classes",
		Description: "Prepare for labor and delivery",
		Icon:        "👶",
		Priority:    domain.PriorityMedium,
	}},
	{"hospital bag", domain.Recommendation{
		Type:        domain.RecommendationMilestone,
		Title:       "Pack Hospital Bag",
		Description: "Be ready for the big day",
		Icon:        "🏥",
		Priority:    domain.PriorityMedium,
	}},
}

// Result is the output of Recommend.
type Result struct {
	// Week is the estimated pregnancy week, nil when no anchor milestone exists.
	Week *int `json:"week"`

	// Items holds at most MaxRecommendations entries in construction order.
	Items []domain.Recommendation `json:"items"`
}

// EstimateWeek finds the first milestone whose title mentions an ultrasound
// or a first appointment and counts whole weeks from its date to now,
// starting at BaseWeek. Anchors dated in the future still yield BaseWeek.
func EstimateWeek(milestones []domain.Milestone, now time.Time) (int, bool) {
	for _, m := range milestones {
		if !containsAny(strings.ToLower(m.Title), anchorKeywords) {
			continue
		}
		return max(BaseWeek+weeksBetween(m.Date, now), BaseWeek), true
	}
	return 0, false
}

// weeksBetween returns floor((to - from) / 1 week).
func weeksBetween(from, to time.Time) int {
	d := to.Sub(from)
	w := d / week
	if d%week < 0 {
		w--
	}
	return int(w)
}

// Recommend builds the recommendation list for milestones as of now:
// at most one week-based entry, then one entry per missing keyword
// milestone, then the community entry, truncated to MaxRecommendations.
func Recommend(milestones []domain.Milestone, now time.Time) Result {
	items := make([]domain.Recommendation, 0, 1+len(gaps)+1)
	var res Result

	if w, ok := EstimateWeek(milestones, now); ok {
		res.Week = &w
		if rec, ok := forWeek(w); ok {
			items = append(items, rec)
		}
	}

	titles := make([]string, len(milestones))
	for i, m := range milestones {
		titles[i] = strings.ToLower(m.Title)
	}
	for _, g := range gaps {
		if !anyContains(titles, g.keyword) {
			items = append(items, g.rec)
		}
	}

	items = append(items, community)

	if len(items) > MaxRecommendations {
		items = items[:MaxRecommendations]
	}
	res.Items = items
	return res
}

// forWeek returns the week-based recommendation for w, if any.
func forWeek(w int) (domain.Recommendation, bool) {
	switch {
	case w >= 28:
		return thirdTrimester, true
	case w >= 12:
		return secondTrimester, true
	case w >= 8:
		return firstTrimester, true
	}
	return domain.Recommendation{}, false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func anyContains(ss []string, sub string) bool {
	for _, s := range ss {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
