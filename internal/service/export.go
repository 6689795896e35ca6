package service

import (
	"context"

	"github.com/pkordes/babysteps/backend/internal/domain"
	"github.com/pkordes/babysteps/backend/internal/store"
)

// ExportService assembles a flat export of all milestones.
type ExportService struct {
	milestones store.MilestoneStore
	tips       store.TipStore
}

// NewExportService constructs an ExportService backed by the provided stores.
func NewExportService(milestones store.MilestoneStore, tips store.TipStore) *ExportService {
	return &ExportService{milestones: milestones, tips: tips}
}

// Export returns one ExportRow per milestone in store order, each carrying
// the number of tips filed under its milestone type.
func (s *ExportService) Export(_ context.Context) ([]domain.ExportRow, error) {
	counts := make(map[string]int)
	for _, t := range s.tips.All() {
		counts[t.MilestoneType]++
	}

	milestones := s.milestones.All()
	rows := make([]domain.ExportRow, 0, len(milestones))
	for _, m := range milestones {
		rows = append(rows, domain.ExportRow{
			MilestoneID: m.ID,
			Title:       m.Title,
			Date:        m.Date,
			Category:    m.Category,
			Notes:       m.Notes,
			CreatedAt:   m.CreatedAt,
			UpdatedAt:   m.UpdatedAt,
			TipCount:    counts[m.Type()],
		})
	}
	return rows, nil
}
