package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/handler"
	"github.com/pkordes/babysteps/backend/internal/recommend"
	"github.com/pkordes/babysteps/backend/internal/service"
)

var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

// ---- mock servicers --------------------------------------------------------

// mockMilestoneServicer is a test double for handler.MilestoneServicer.
// Set only the method fields your test needs.
type mockMilestoneServicer struct {
	create     func(ctx context.Context, m domain.Milestone) (domain.Milestone, error)
	getByID    func(ctx context.Context, id string) (domain.Milestone, error)
	listPaged  func(ctx context.Context, f service.MilestoneFilter, p domain.PaginationParams) ([]domain.Milestone, int, error)
	update     func(ctx context.Context, id string, patch domain.MilestonePatch) (domain.Milestone, error)
	delete     func(ctx context.Context, id string) error
	timeline   func(ctx context.Context) []domain.Milestone
	predefined func() []string
}

func (m *mockMilestoneServicer) Create(ctx context.Context, ms domain.Milestone) (domain.Milestone, error) {
	return m.create(ctx, ms)
}
func (m *mockMilestoneServicer) GetByID(ctx context.Context, id string) (domain.Milestone, error) {
	return m.getByID(ctx, id)
}
func (m *mockMilestoneServicer) ListPaged(ctx context.Context, f service.MilestoneFilter, p domain.PaginationParams) ([]domain.Milestone, int, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockMilestoneServicer) Update(ctx context.Context, id string, patch domain.MilestonePatch) (domain.Milestone, error) {
	return m.update(ctx, id, patch)
}
func (m *mockMilestoneServicer) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}
func (m *mockMilestoneServicer) Timeline(ctx context.Context) []domain.Milestone {
	return m.timeline(ctx)
}
func (m *mockMilestoneServicer) Predefined() []string {
	return m.predefined()
}

// compile-time check: mockMilestoneServicer must satisfy handler.MilestoneServicer.
var _ handler.MilestoneServicer = (*mockMilestoneServicer)(nil)

// mockTipServicer is a test double for handler.TipServicer.
type mockTipServicer struct {
	create       func(ctx context.Context, tip domain.Tip) (domain.Tip, error)
	list         func(ctx context.Context, milestoneType string) []domain.Tip
	forMilestone func(ctx context.Context, milestoneID string) ([]domain.Tip, error)
	popular      func(ctx context.Context, limit int) []domain.Tip
	recent       func(ctx context.Context, limit int) []domain.Tip
	like         func(ctx context.Context, id string) (domain.Tip, error)
}

func (m *mockTipServicer) Create(ctx context.Context, tip domain.Tip) (domain.Tip, error) {
	return m.create(ctx, tip)
}
func (m *mockTipServicer) List(ctx context.Context, milestoneType string) []domain.Tip {
	return m.list(ctx, milestoneType)
}
func (m *mockTipServicer) ForMilestone(ctx context.Context, milestoneID string) ([]domain.Tip, error) {
	return m.forMilestone(ctx, milestoneID)
}
func (m *mockTipServicer) Popular(ctx context.Context, limit int) []domain.Tip {
	return m.popular(ctx, limit)
}
func (m *mockTipServicer) Recent(ctx context.Context, limit int) []domain.Tip {
	return m.recent(ctx, limit)
}
func (m *mockTipServicer) Like(ctx context.Context, id string) (domain.Tip, error) {
	return m.like(ctx, id)
}

// compile-time check: mockTipServicer must satisfy handler.TipServicer.
var _ handler.TipServicer = (*mockTipServicer)(nil)

type mockRecommendationServicer struct {
	get func(ctx context.Context) recommend.Result
}

func (m *mockRecommendationServicer) Get(ctx context.Context) recommend.Result {
	return m.get(ctx)
}

// compile-time check: mockRecommendationServicer must satisfy handler.RecommendationServicer.
var _ handler.RecommendationServicer = (*mockRecommendationServicer)(nil)

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

// compile-time check: mockExportServicer must satisfy handler.ExportServicer.
var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into the chi router,
// the same way main.go does in production (minus middleware).
func newHTTPHandler(ms handler.MilestoneServicer, ts handler.TipServicer, rs handler.RecommendationServicer, es handler.ExportServicer) http.Handler {
	srv := handler.NewServer(ms, ts, rs, es, func() time.Time { return now })
	return srv.Routes(nil)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do runs req against h and returns the recorder.
func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeError decodes an ErrorResponse body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func milestoneFixture() domain.Milestone {
	return domain.Milestone{
		ID:        "m-1",
		Title:     "First ultrasound",
		Date:      time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC),
		Notes:     "Heart rate looks perfect",
		Category:  domain.CategoryMedical,
		CreatedAt: now,
	}
}

func tipFixture() domain.Tip {
	return domain.Tip{
		ID:            "t-1",
		Content:       "Bring snacks",
		Author:        "Mom of 2",
		MilestoneType: "first ultrasound",
		Likes:         8,
		CreatedAt:     now,
	}
}
