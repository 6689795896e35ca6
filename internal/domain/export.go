package domain

import "time"

// ExportRow is a single row in the full-data export: one row per milestone,
// with the number of community tips that share its milestone type.
type ExportRow struct {
	MilestoneID string
	Title       string
	Date        time.Time
	Category    Category
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   *time.Time // nil when the milestone was never edited

	// TipCount is the number of tips whose milestone type matches the title.
	TipCount int
}
