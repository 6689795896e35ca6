package domain

import "time"

// GeneralTipType is the milestone type of tips not tied to any milestone.
const GeneralTipType = "general"

// Tip is a short community-contributed note attached to a milestone type.
// MilestoneType is matched against the lower-cased milestone title, so a tip
// written for "First ultrasound" carries "first ultrasound".
type Tip struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	MilestoneType string    `json:"milestoneType"`
	Likes         int       `json:"likes"`
	CreatedAt     time.Time `json:"createdAt"`
	Verified      bool      `json:"verified"`
}
