package scoring

import "time"

// Action is a qualifying panelist action. The set is closed.
type Action string

const (
	ActionRegister            Action = "register"
	ActionCompleteProfile     Action = "complete_profile"
	ActionApplyCampaign       Action = "apply_campaign"
	ActionSelectedForCampaign Action = "selected_for_campaign"
	ActionSubmitResponse      Action = "submit_response"
	ActionHighQualityReview   Action = "high_quality_review"
	ActionFrequentFeedback    Action = "frequent_feedback"
	ActionReferFriend         Action = "refer_friend"
)

var actionPoints = map[Action]int{
	ActionRegister:            10,
	ActionCompleteProfile:     5,
	ActionApplyCampaign:       5,
	ActionSelectedForCampaign: 10,
	ActionSubmitResponse:      20,
	ActionHighQualityReview:   30,
	ActionFrequentFeedback:    10,
	ActionReferFriend:         50,
}

// Points returns the fixed value of a known action.
func (a Action) Points() (int, bool) {
	p, ok := actionPoints[a]
	return p, ok
}

// RateLimit caps awarded occurrences of an action within a rolling window.
type RateLimit struct {
	Max    int
	Window time.Duration
}

var rateLimits = map[Action]RateLimit{
	ActionSubmitResponse: {Max: 5, Window: 24 * time.Hour},
	ActionReferFriend:    {Max: 3, Window: 7 * 24 * time.Hour},
}

// LimitFor reports the cap on an action; unlimited actions return false.
func LimitFor(a Action) (RateLimit, bool) {
	l, ok := rateLimits[a]
	return l, ok
}
