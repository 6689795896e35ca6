package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/service"
)

// CreateMilestoneRequest is the body of POST /milestones.
// Date may be a calendar date or an RFC 3339 timestamp; it defaults to now.
type CreateMilestoneRequest struct {
	Title    string          `json:"title"`
	Date     *string         `json:"date,omitempty"`
	Notes    *string         `json:"notes,omitempty"`
	Category domain.Category `json:"category,omitempty"`
}

// UpdateMilestoneRequest is the body of PATCH /milestones/{id}.
// Absent fields are left unchanged.
type UpdateMilestoneRequest struct {
	Title    *string          `json:"title,omitempty"`
	Date     *string          `json:"date,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
	Category *domain.Category `json:"category,omitempty"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// MilestoneList is the body of GET /milestones.
type MilestoneList struct {
	Data       []domain.Milestone `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

// PredefinedList is the body of GET /milestones/predefined.
type PredefinedList struct {
	Titles []string `json:"titles"`
}

// CreateMilestone handles POST /milestones.
func (s *Server) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	var body CreateMilestoneRequest
	if !decodeBody(w, r, &body) {
		return
	}

	m := domain.Milestone{Title: body.Title, Category: body.Category}
	if body.Notes != nil {
		m.Notes = *body.Notes
	}
	if body.Date != nil {
		d, err := parseDate(*body.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
			return
		}
		m.Date = d
	}

	created, err := s.milestones.Create(r.Context(), m)
	if err != nil {
		writeServiceError(w, r, err, "milestone not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListMilestones handles GET /milestones.
// Supports ?category=, ?from= and ?to= (inclusive calendar dates) plus
// ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) ListMilestones(w http.ResponseWriter, r *http.Request) {
	var (
		category    *string
		from, to    *openapi_types.Date
		page, limit *int
	)
	for name, dest := range map[string]any{
		"category": &category,
		"from":     &from,
		"to":       &to,
		"page":     &page,
		"limit":    &limit,
	} {
		if err := queryParam(r, name, dest); err != nil {
			writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
			return
		}
	}

	var f service.MilestoneFilter
	if category != nil {
		c := domain.Category(*category)
		f.Category = &c
	}
	f.From, f.To = dayBounds(from, to)

	params := domain.NewPaginationParams(page, limit)
	items, total, err := s.milestones.ListPaged(r.Context(), f, params)
	if err != nil {
		writeServiceError(w, r, err, "milestone not found")
		return
	}
	writeJSON(w, http.StatusOK, MilestoneList{
		Data:       items,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// ListPredefinedMilestones handles GET /milestones/predefined.
func (s *Server) ListPredefinedMilestones(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PredefinedList{Titles: s.milestones.Predefined()})
}

// GetMilestone handles GET /milestones/{id}.
func (s *Server) GetMilestone(w http.ResponseWriter, r *http.Request) {
	m, err := s.milestones.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "milestone not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateMilestone handles PATCH /milestones/{id}.
func (s *Server) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	var body UpdateMilestoneRequest
	if !decodeBody(w, r, &body) {
		return
	}

	patch := domain.MilestonePatch{Title: body.Title, Notes: body.Notes, Category: body.Category}
	if body.Date != nil {
		d, err := parseDate(*body.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
			return
		}
		patch.Date = &d
	}

	updated, err := s.milestones.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, err, "milestone not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteMilestone handles DELETE /milestones/{id}.
func (s *Server) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	if err := s.milestones.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, "milestone not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
