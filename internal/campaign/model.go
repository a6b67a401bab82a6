package campaign

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

// Campaign is a time-boxed engagement run by an announcer.
type Campaign struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	AnnouncerID    uint           `gorm:"not null;index" json:"announcerId"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	StartDate      datatypes.Date `gorm:"not null" json:"startDate"`
	EndDate        datatypes.Date `gorm:"not null" json:"endDate"`
	Status         Status         `gorm:"size:20;not null;index" json:"status"`
	MaxPanelists   int            `gorm:"not null" json:"maxPanelists"`
	IsCompleted    bool           `gorm:"not null" json:"isCompleted"`
	IsDraft        bool           `gorm:"not null" json:"isDraft"`
	RewardType     string         `gorm:"size:20" json:"rewardType,omitempty"`
	RewardValue    string         `gorm:"size:100" json:"rewardValue,omitempty"`
	CampaignType   string         `gorm:"size:20;not null" json:"campaignType"`
	Visibility     string         `gorm:"size:20;not null" json:"visibility"`
	Requirements   string         `gorm:"type:text" json:"requirements,omitempty"`
	TargetAgeGroup string         `gorm:"size:10" json:"targetAgeGroup,omitempty"`
	TargetGender   string         `gorm:"size:10" json:"targetGender"`
	TargetLocation string         `gorm:"size:255" json:"targetLocation,omitempty"`
	Budget         *float64       `gorm:"type:decimal(10,2)" json:"budget,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// IsActive reports whether today falls within [StartDate, EndDate].
func (c *Campaign) IsActive(today time.Time) bool {
	d := dayKey(today)
	return dayKey(time.Time(c.StartDate)) <= d && d <= dayKey(time.Time(c.EndDate))
}

// OpenForApplications is false for drafts and completed campaigns.
func (c *Campaign) OpenForApplications() bool {
	return !c.IsDraft && !c.IsCompleted
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// Application links a panelist to a campaign they applied to.
type Application struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	CampaignID uint              `gorm:"not null;uniqueIndex:idx_campaign_panelist" json:"campaignId"`
	PanelistID uint              `gorm:"not null;uniqueIndex:idx_campaign_panelist;index" json:"panelistId"`
	Status     ApplicationStatus `gorm:"size:20;not null" json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func (Application) TableName() string {
	return "panelist_campaigns"
}
