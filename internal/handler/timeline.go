package handler

import (
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/pkordes/babysteps/backend/internal/domain"
)

// TimelineEntry is one milestone as shown on the timeline.
type TimelineEntry struct {
	domain.Milestone
	Icon         string `json:"icon"`
	RelativeDate string `json:"relativeDate"`
}

// CategoryIcon returns the emoji shown next to a milestone of category c.
func CategoryIcon(c domain.Category) string {
	switch c {
	case domain.CategoryMedical:
		return "🏥"
	case domain.CategoryPreparation:
		return "📋"
	case domain.CategoryEmotional:
		return "💝"
	case domain.CategoryPhysical:
		return "💪"
	default:
		return "✨"
	}
}

// GetTimeline handles GET /timeline: milestones by date, most recent first.
func (s *Server) GetTimeline(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	milestones := s.milestones.Timeline(r.Context())

	out := make([]TimelineEntry, 0, len(milestones))
	for _, m := range milestones {
		out = append(out, TimelineEntry{
			Milestone:    m,
			Icon:         CategoryIcon(m.Category),
			RelativeDate: humanize.RelTime(m.Date, now, "ago", "from now"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
