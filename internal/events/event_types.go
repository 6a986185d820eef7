package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/credit-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered      EventType = "user_registered"
	EventVerificationUpdated EventType = "verification_updated"
	EventCardOpened          EventType = "card_opened"
	EventCardLimitIncreased  EventType = "card_limit_increased"
	EventCardClosed          EventType = "card_closed"
)

// All lists every event type.
var All = []EventType{
	EventUserRegistered,
	EventVerificationUpdated,
	EventCardOpened,
	EventCardLimitIncreased,
	EventCardClosed,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, userID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// VerificationUpdatedPayload payload.
type VerificationUpdatedPayload struct {
	Kind     domain.PhotoKind `json:"kind"`
	Verified bool             `json:"verified"`
}

// CardOpenedPayload payload.
type CardOpenedPayload struct {
	CardID    string `json:"card_id"`
	Requested int64  `json:"requested"`
	Approved  int64  `json:"approved"`
}

// CardLimitIncreasedPayload payload.
type CardLimitIncreasedPayload struct {
	CardID   string `json:"card_id"`
	OldLimit int64  `json:"old_limit"`
	NewLimit int64  `json:"new_limit"`
}

// CardClosedPayload payload.
type CardClosedPayload struct {
	CardID string `json:"card_id"`
}
