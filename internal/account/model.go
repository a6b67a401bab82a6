package account

import "time"

type Role string

const (
	RoleAnnouncer Role = "ANNOUNCER"
	RolePanelist  Role = "PANELIST"
	RoleAdmin     Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAnnouncer, RolePanelist, RoleAdmin:
		return true
	}
	return false
}

// Account is the identity record every profile hangs off.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         Role      `gorm:"size:20;not null;index" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Interest is free reference data panelists tag themselves with.
type Interest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultInterests is seeded at startup.
var DefaultInterests = []string{
	"Technology", "Fashion", "Food", "Travel", "Sports",
	"Health", "Finance", "Gaming", "Music", "Education",
}
