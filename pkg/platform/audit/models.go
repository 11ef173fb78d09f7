package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Action names an audited state change. Values appear in outbox rows and as
// Kafka record keys, so they must stay stable.
type Action string

const (
	// Certificate events
	ActionCertificateIssued  Action = "certificate_issued"
	ActionCertificateUpdated Action = "certificate_updated"
	ActionCertificateDeleted Action = "certificate_deleted"

	// Registrant events
	ActionRegistrantSubmitted Action = "registrant_submitted"
	ActionRegistrantPromoted  Action = "registrant_promoted"

	// Admin events
	ActionAdminCreated   Action = "admin_created"
	ActionAdminSignedIn  Action = "admin_signed_in"
	ActionAdminSignedOut Action = "admin_signed_out"
	ActionReauthFailed   Action = "reauth_failed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    Action            `json:"action"`
	ActorID   string            `json:"actor_id,omitempty"`
	Subject   string            `json:"subject"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Entry is one outbox row. Payload is the JSON encoded Event.
type Entry struct {
	ID          uuid.UUID
	Action      Action
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// NewEntry encodes an event into an unpublished outbox entry.
func NewEntry(event Event) (Entry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:        uuid.New(),
		Action:    event.Action,
		Payload:   payload,
		CreatedAt: event.Timestamp,
	}, nil
}

// Decode unpacks the event carried by an entry.
func (e Entry) Decode() (Event, error) {
	var event Event
	err := json.Unmarshal(e.Payload, &event)
	return event, err
}
