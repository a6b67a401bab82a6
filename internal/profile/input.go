package profile

// PanelistProfileInput holds the editable panelist fields.
type PanelistProfileInput struct {
	FullName               string            `json:"fullName" validate:"required,max=100"`
	PhoneNumber            string            `json:"phoneNumber" validate:"omitempty,max=20"`
	Gender                 string            `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Birthday               string            `json:"birthday" validate:"required,datetime=2006-01-02"`
	Location               string            `json:"location" validate:"required,max=255"`
	PreferredContactMethod string            `json:"preferredContactMethod" validate:"required,oneof=EMAIL SMS CALL"`
	Availability           string            `json:"availability" validate:"required,oneof=MORNING EVENING WEEKEND"`
	ExperienceLevel        string            `json:"experienceLevel" validate:"required,oneof=BEGINNER EXPERIENCED"`
	SocialMediaProfiles    map[string]string `json:"socialMediaProfiles"`
	InterestIDs            []uint            `json:"interestIds"`
}

// PanelistSignup creates the account and the profile together.
type PanelistSignup struct {
	PanelistProfileInput
	Email      string `json:"email" validate:"required,email,max=254"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	ReferrerID *uint  `json:"referrerId"`
}

type AnnouncerSignup struct {
	CompanyName        string            `json:"companyName" validate:"required,max=255"`
	Email              string            `json:"email" validate:"required,email,max=254"`
	Password           string            `json:"password" validate:"required,min=8,max=72"`
	PhoneNumber        string            `json:"phoneNumber" validate:"omitempty,max=20"`
	Location           string            `json:"location" validate:"required,max=255"`
	Industry           string            `json:"industry" validate:"required,oneof=TECH FASHION BEAUTY"`
	CompanySize        string            `json:"companySize" validate:"required,oneof=SMALL MEDIUM LARGE"`
	CompanyDescription string            `json:"companyDescription"`
	Website            string            `json:"website" validate:"omitempty,url"`
	SocialMediaLinks   map[string]string `json:"socialMediaLinks"`
}
