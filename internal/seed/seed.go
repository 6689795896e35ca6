// Package seed provides the sample collections written to storage when a
// store finds no valid persisted data, and the predefined milestone titles.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/babysteps/backend/internal/domain"
)

//go:embed seed.yaml
var raw []byte

const day = 24 * time.Hour

type milestoneEntry struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	DaysAgo  int    `yaml:"days_ago"`
	Notes    string `yaml:"notes"`
	Category string `yaml:"category"`
}

type tipEntry struct {
	ID            string `yaml:"id"`
	Content       string `yaml:"content"`
	Author        string `yaml:"author"`
	MilestoneType string `yaml:"milestone_type"`
	Likes         int    `yaml:"likes"`
	DaysAgo       int    `yaml:"days_ago"`
	Verified      bool   `yaml:"verified"`
}

type dataset struct {
	Milestones []milestoneEntry `yaml:"milestones"`
	Tips       []tipEntry       `yaml:"tips"`
	Predefined []string         `yaml:"predefined"`
}

// data is parsed once at init. The file is compiled in, so a parse failure
// is a programming error.
var data = mustParse(raw)

func mustParse(b []byte) dataset {
	var d dataset
	if err := yaml.Unmarshal(b, &d); err != nil {
		panic(fmt.Sprintf("seed: parse seed.yaml: %v", err))
	}
	return d
}

// Milestones returns the sample milestones with dates relative to now.
// Both date and createdAt are set to now minus the entry's age.
func Milestones(now time.Time) []domain.Milestone {
	out := make([]domain.Milestone, 0, len(data.Milestones))
	for _, e := range data.Milestones {
		at := now.Add(-time.Duration(e.DaysAgo) * day)
		out = append(out, domain.Milestone{
			ID:        e.ID,
			Title:     e.Title,
			Date:      at,
			Notes:     e.Notes,
			Category:  domain.Category(e.Category),
			CreatedAt: at,
		})
	}
	return out
}

// Tips returns the sample tips with creation times relative to now.
func Tips(now time.Time) []domain.Tip {
	out := make([]domain.Tip, 0, len(data.Tips))
	for _, e := range data.Tips {
		out = append(out, domain.Tip{
			ID:            e.ID,
			Content:       e.Content,
			Author:        e.Author,
			MilestoneType: e.MilestoneType,
			Likes:         e.Likes,
			CreatedAt:     now.Add(-time.Duration(e.DaysAgo) * day),
			Verified:      e.Verified,
		})
	}
	return out
}

// PredefinedMilestones returns the quick-select milestone titles.
func PredefinedMilestones() []string {
	return append([]string(nil), data.Predefined...)
}
