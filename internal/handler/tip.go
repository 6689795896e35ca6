package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/babysteps/backend/internal/domain"
)

// CreateTipRequest is the body of POST /tips.
// An empty milestoneType files the tip under "general".
type CreateTipRequest struct {
	Content       string `json:"content"`
	Author        string `json:"author"`
	MilestoneType string `json:"milestoneType,omitempty"`
}

// CreateTip handles POST /tips.
func (s *Server) CreateTip(w http.ResponseWriter, r *http.Request) {
	var body CreateTipRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.tips.Create(r.Context(), domain.Tip{
		Content:       body.Content,
		Author:        body.Author,
		MilestoneType: body.MilestoneType,
	})
	if err != nil {
		writeServiceError(w, r, err, "tip not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListTips handles GET /tips, optionally filtered by ?milestone_type=.
func (s *Server) ListTips(w http.ResponseWriter, r *http.Request) {
	var milestoneType *string
	if err := queryParam(r, "milestone_type", &milestoneType); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	mt := ""
	if milestoneType != nil {
		mt = *milestoneType
	}
	writeJSON(w, http.StatusOK, s.tips.List(r.Context(), mt))
}

// ListMilestoneTips handles GET /milestones/{id}/tips.
func (s *Server) ListMilestoneTips(w http.ResponseWriter, r *http.Request) {
	tips, err := s.tips.ForMilestone(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "milestone not found")
		return
	}
	writeJSON(w, http.StatusOK, tips)
}

// ListPopularTips handles GET /tips/popular?limit=.
func (s *Server) ListPopularTips(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.tips.Popular(r.Context(), limit))
}

// ListRecentTips handles GET /tips/recent?limit=.
func (s *Server) ListRecentTips(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.tips.Recent(r.Context(), limit))
}

// LikeTip handles POST /tips/{id}/like.
func (s *Server) LikeTip(w http.ResponseWriter, r *http.Request) {
	tip, err := s.tips.Like(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "tip not found")
		return
	}
	writeJSON(w, http.StatusOK, tip)
}

// limitParam reads ?limit=. Absent means 0, which the service replaces with
// its default.
func limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	var limit *int
	if err := queryParam(r, "limit", &limit); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return 0, false
	}
	if limit == nil {
		return 0, true
	}
	return *limit, true
}
