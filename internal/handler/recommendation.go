package handler

import "net/http"

// GetRecommendations handles GET /recommendations.
// The body is {"week": <int or null>, "items": [...]}.
func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.recs.Get(r.Context()))
}
