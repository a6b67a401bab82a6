package profile

import (
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"gorm.io/datatypes"
)

// Panelist is tied 1:1 to an account. Score and Rank are read-only here:
// the scoring engine is their only writer.
type Panelist struct {
	ID                     uint               `gorm:"primaryKey" json:"id"`
	AccountID              uint               `gorm:"uniqueIndex;not null" json:"accountId"`
	FullName               string             `gorm:"size:100;uniqueIndex;not null" json:"fullName"`
	Email                  string             `gorm:"size:254;not null" json:"email"`
	PhoneNumber            string             `gorm:"size:20" json:"phoneNumber,omitempty"`
	Gender                 string             `gorm:"size:10" json:"gender"`
	Birthday               datatypes.Date     `json:"birthday"`
	Location               string             `gorm:"size:255" json:"location"`
	PreferredContactMethod string             `gorm:"size:10" json:"preferredContactMethod"`
	Availability           string             `gorm:"size:20" json:"availability"`
	ExperienceLevel        string             `gorm:"size:20" json:"experienceLevel"`
	SocialMediaProfiles    datatypes.JSON     `json:"socialMediaProfiles,omitempty"`
	Score                  int                `gorm:"<-:false;not null;default:0" json:"score"`
	Rank                   scoring.Rank       `gorm:"<-:false;size:50;not null;default:Beginner" json:"rank"`
	Interests              []account.Interest `gorm:"many2many:panelist_interests" json:"interests"`
	CreatedAt              time.Time          `json:"createdAt"`
	UpdatedAt              time.Time          `json:"updatedAt"`
}

// Announcer is a campaign-sponsoring organisation, tied 1:1 to an account.
type Announcer struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	AccountID          uint           `gorm:"uniqueIndex;not null" json:"accountId"`
	CompanyName        string         `gorm:"size:255;uniqueIndex;not null" json:"companyName"`
	Email              string         `gorm:"size:254;not null" json:"email"`
	PhoneNumber        string         `gorm:"size:20" json:"phoneNumber,omitempty"`
	Location           string         `gorm:"size:255" json:"location"`
	Industry           string         `gorm:"size:50" json:"industry"`
	CompanySize        string         `gorm:"size:20" json:"companySize"`
	CompanyDescription string         `gorm:"type:text" json:"companyDescription,omitempty"`
	SocialMediaLinks   datatypes.JSON `json:"socialMediaLinks,omitempty"`
	Website            string         `gorm:"size:255" json:"website,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}
