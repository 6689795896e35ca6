// Package domain contains the core data types for the BabySteps application.
// This package has zero external dependencies and is imported by every other
// internal package (kv, store, service, handler).
package domain

import (
	"strings"
	"time"
)

// Category groups milestones on the timeline.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryMedical     Category = "medical"
	CategoryPreparation Category = "preparation"
	CategoryEmotional   Category = "emotional"
	CategoryPhysical    Category = "physical"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryMedical,
	CategoryPreparation,
	CategoryEmotional,
	CategoryPhysical,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// OrDefault returns c, or CategoryGeneral when c is empty or unknown.
// The milestone store applies it to every record it reads back, since
// persisted blobs are not schema-checked.
func (c Category) OrDefault() Category {
	if c.Valid() {
		return c
	}
	return CategoryGeneral
}

// Milestone is a single dated life event recorded by the user.
// ID and CreatedAt are assigned by the store and never change afterwards.
type Milestone struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Date      time.Time  `json:"date"`
	Notes     string     `json:"notes"`
	Category  Category   `json:"category"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"` // nil until the first update
}

// Type returns the loose join key tips use to refer to this milestone:
// the lower-cased title.
func (m Milestone) Type() string {
	return strings.ToLower(m.Title)
}

// MilestonePatch carries a partial update. Nil fields are left untouched.
type MilestonePatch struct {
	Title    *string    `json:"title,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
	Category *Category  `json:"category,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p MilestonePatch) IsEmpty() bool {
	return p.Title == nil && p.Date == nil && p.Notes == nil && p.Category == nil
}

// Apply merges p into m and returns the result. ID and CreatedAt are never
// touched; UpdatedAt is the caller's responsibility.
func (m Milestone) Apply(p MilestonePatch) Milestone {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Date != nil {
		m.Date = *p.Date
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	return m
}
