package form

import "time"

// Form is a campaign's questionnaire. A campaign normally has one form;
// duplicates share the campaign, so campaign_id is not unique.
type Form struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CampaignID     uint       `gorm:"not null;index" json:"campaignId"`
	AnnouncerID    uint       `gorm:"not null;index" json:"announcerId"`
	Title          string     `gorm:"size:255" json:"title"`
	Editable       bool       `gorm:"not null" json:"editable"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	Sections       []Section  `gorm:"foreignKey:FormID" json:"sections"`
	Questions      []Question `gorm:"foreignKey:FormID" json:"questions,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Expired reports whether the expiration date has passed at now.
func (f *Form) Expired(now time.Time) bool {
	return f.ExpirationDate != nil && f.ExpirationDate.Before(now)
}

type Section struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FormID      uint       `gorm:"not null;index" json:"formId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Order       int        `gorm:"column:sort_order;not null" json:"order"`
	Questions   []Question `gorm:"foreignKey:SectionID" json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Question struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	FormID       uint               `gorm:"not null;index" json:"formId"`
	SectionID    *uint              `gorm:"index" json:"sectionId"`
	Text         string             `gorm:"type:text;not null" json:"text"`
	QuestionType QuestionType       `gorm:"size:20;not null" json:"questionType"`
	IsRequired   bool               `gorm:"not null" json:"isRequired"`
	Order        int                `gorm:"column:sort_order;not null" json:"order"`
	IsActive     bool               `gorm:"not null" json:"isActive"`
	Options      []QuestionOption   `gorm:"foreignKey:QuestionID" json:"options"`
	Conditions   []ConditionalLogic `gorm:"foreignKey:QuestionID" json:"conditions"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type QuestionOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"questionId"`
	Value      string `gorm:"size:255;not null" json:"value"`
}

// ConditionalLogic shows its question only when the trigger question's
// latest final answer equals TriggerValue. A rule without a trigger is inert.
type ConditionalLogic struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	QuestionID        uint    `gorm:"not null;index" json:"questionId"`
	TriggerQuestionID *uint   `gorm:"index" json:"triggerQuestionId"`
	TriggerValue      *string `gorm:"size:255" json:"triggerValue"`
}

// PanelistResponse is one answer. A panelist keeps at most one draft per
// question; each final submission appends a new row.
type PanelistResponse struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	PanelistID uint                `gorm:"not null;index:idx_response_owner,priority:1" json:"panelistId"`
	FormID     uint                `gorm:"not null;index:idx_response_owner,priority:2;index" json:"formId"`
	QuestionID uint                `gorm:"not null;index:idx_response_owner,priority:3;index" json:"questionId"`
	Content    string              `gorm:"type:text" json:"content"`
	IsDraft    bool                `gorm:"not null" json:"isDraft"`
	Selections []ResponseSelection `gorm:"foreignKey:ResponseID" json:"selections"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

type ResponseSelection struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ResponseID uint `gorm:"not null;uniqueIndex:idx_response_option" json:"responseId"`
	OptionID   uint `gorm:"not null;uniqueIndex:idx_response_option;index" json:"optionId"`
}
