// Package handler implements the HTTP handlers for the BabySteps API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, milestone.go, etc.) but share the same Server struct so
// they can access its dependencies. Routes wires them into a chi router.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/babysteps/backend/api"
	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/recommend"
	"github.com/pkordes/babysteps/backend/internal/service"
)

// MilestoneServicer defines the milestone operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the stores.
type MilestoneServicer interface {
	Create(ctx context.Context, m domain.Milestone) (domain.Milestone, error)
	GetByID(ctx context.Context, id string) (domain.Milestone, error)
	ListPaged(ctx context.Context, f service.MilestoneFilter, p domain.PaginationParams) ([]domain.Milestone, int, error)
	Update(ctx context.Context, id string, patch domain.MilestonePatch) (domain.Milestone, error)
	Delete(ctx context.Context, id string) error
	Timeline(ctx context.Context) []domain.Milestone
	Predefined() []string
}

// TipServicer defines the community tip operations the handlers depend on.
// Verification is an admin operation and is deliberately absent.
type TipServicer interface {
	Create(ctx context.Context, tip domain.Tip) (domain.Tip, error)
	List(ctx context.Context, milestoneType string) []domain.Tip
	ForMilestone(ctx context.Context, milestoneID string) ([]domain.Tip, error)
	Popular(ctx context.Context, limit int) []domain.Tip
	Recent(ctx context.Context, limit int) []domain.Tip
	Like(ctx context.Context, id string) (domain.Tip, error)
}

// RecommendationServicer produces the recommendation list.
type RecommendationServicer interface {
	Get(ctx context.Context) recommend.Result
}

// ExportServicer defines the export operation the handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server holds the dependencies of every endpoint.
type Server struct {
	milestones MilestoneServicer
	tips       TipServicer
	recs       RecommendationServicer
	export     ExportServicer
	now        func() time.Time
}

// NewServer constructs the Server with all its dependencies.
// now is used for relative dates on the timeline.
func NewServer(milestones MilestoneServicer, tips TipServicer, recs RecommendationServicer, export ExportServicer, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{milestones: milestones, tips: tips, recs: recs, export: export, now: now}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil)
}

// Routes registers every endpoint on a new chi router. writeLimit, when not
// nil, wraps the community write endpoints (tip creation and likes).
func (s *Server) Routes(writeLimit func(http.Handler) http.Handler) chi.Router {
	if writeLimit == nil {
		writeLimit = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/milestones", func(r chi.Router) {
		r.Get("/", s.ListMilestones)
		r.Post("/", s.CreateMilestone)
		r.Get("/predefined", s.ListPredefinedMilestones)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetMilestone)
			r.Patch("/", s.UpdateMilestone)
			r.Delete("/", s.DeleteMilestone)
			r.Get("/tips", s.ListMilestoneTips)
		})
	})
	r.Get("/timeline", s.GetTimeline)

	r.Route("/tips", func(r chi.Router) {
		r.Get("/", s.ListTips)
		r.With(writeLimit).Post("/", s.CreateTip)
		r.Get("/popular", s.ListPopularTips)
		r.Get("/recent", s.ListRecentTips)
		r.With(writeLimit).Post("/{id}/like", s.LikeTip)
	})

	r.Get("/recommendations", s.GetRecommendations)
	r.Get("/export", s.GetExport)
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(api.OpenAPI)
}
