package badge

import "time"

// Badge is threshold-based reference data.
type Badge struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description   string `gorm:"type:text" json:"description"`
	RequiredScore int    `gorm:"not null;index" json:"requiredScore"`
}

// PanelistBadge records that a panelist earned a badge. The composite
// unique index is the backstop against concurrent double awards.
type PanelistBadge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PanelistID uint      `gorm:"not null;uniqueIndex:idx_panelist_badge" json:"panelistId"`
	BadgeID    uint      `gorm:"not null;uniqueIndex:idx_panelist_badge" json:"badgeId"`
	AwardedAt  time.Time `gorm:"not null" json:"awardedAt"`
	Badge      Badge     `gorm:"foreignKey:BadgeID" json:"badge"`
}

// Defaults is the badge catalogue seeded at startup.
var Defaults = []Badge{
	{Name: "First Steps", Description: "Earned your first points.", RequiredScore: 10},
	{Name: "Bronze Voice", Description: "Reached 50 points.", RequiredScore: 50},
	{Name: "Silver Voice", Description: "Reached 100 points.", RequiredScore: 100},
	{Name: "Gold Voice", Description: "Reached 200 points.", RequiredScore: 200},
	{Name: "Platinum Voice", Description: "Reached 500 points.", RequiredScore: 500},
	{Name: "Elite Panelist", Description: "Reached 1000 points.", RequiredScore: 1000},
}
