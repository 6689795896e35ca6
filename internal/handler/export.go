// Package handler: export.go implements GET /export.
// Returns every milestone as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/babysteps/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"milestone_id", "title", "date", "category", "notes",
	"created_at", "updated_at", "tip_count",
}

// ExportRow is one row of the JSON export.
type ExportRow struct {
	MilestoneID string          `json:"milestoneId"`
	Title       string          `json:"title"`
	Date        time.Time       `json:"date"`
	Category    domain.Category `json:"category"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
	TipCount    int             `json:"tipCount"`
}

// GetExport implements GET /export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := queryParam(r, "format", &format); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	if format != nil && *format != "csv" && *format != "json" {
		writeJSON(w, http.StatusBadRequest, requestBody("format must be csv or json"))
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "not found")
		return
	}

	if format != nil && *format == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONRows(rows))
}

// buildJSONRows converts domain rows to the JSON response shape.
// Empty notes are omitted.
func buildJSONRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		row := ExportRow{
			MilestoneID: r.MilestoneID,
			Title:       r.Title,
			Date:        r.Date,
			Category:    r.Category,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
			TipCount:    r.TipCount,
		}
		if r.Notes != "" {
			notes := r.Notes
			row.Notes = &notes
		}
		out = append(out, row)
	}
	return out
}

// writeCSV encodes domain rows as CSV.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="babysteps-export.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Nil time pointers are encoded as empty strings.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.MilestoneID,
		r.Title,
		r.Date.UTC().Format(time.RFC3339),
		string(r.Category),
		r.Notes,
		r.CreatedAt.UTC().Format(time.RFC3339),
		formatOptionalTime(r.UpdatedAt),
		strconv.Itoa(r.TipCount),
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
