package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Kind names a notification the core asks to be delivered.
type Kind string

const (
	KindBadgeAwarded      Kind = "badge_awarded"
	KindResponseSubmitted Kind = "response_submitted"
	KindCampaignReminder  Kind = "campaign_reminder"
)

// QueueKey is the Redis list consumed by the mail/push workers.
const QueueKey = "notifications:queue"

// Event is the payload pushed onto QueueKey as JSON.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Kind      Kind              `json:"kind"`
	AccountID uint              `json:"accountId"`
	Payload   datatypes.JSONMap `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewEvent stamps an event with a time-ordered id.
func NewEvent(kind Kind, accountID uint, payload map[string]interface{}) Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Event{
		ID:        id,
		Kind:      kind,
		AccountID: accountID,
		Payload:   datatypes.JSONMap(payload),
		CreatedAt: time.Now().UTC(),
	}
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(ev Event)
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard drops every event.
var Discard Publisher = discard{}
