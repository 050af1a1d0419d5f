// Package domain defines the core outbox domain entities and types.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// EventTypeAdminAccessRequested is emitted when an admin asks a user for access.
const EventTypeAdminAccessRequested = "admin_access.requested"

// RedactedPayload replaces the payload of an event once it has been handled.
// Authorization links are bearer credentials and must not outlive delivery.
const RedactedPayload = "{}"

// OutboxEvent represents an event in the transactional outbox pattern
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AdminAccessRequestedPayload is the payload of EventTypeAdminAccessRequested.
type AdminAccessRequestedPayload struct {
	To            string `json:"to"`
	Link          string `json:"link"`
	Reason        string `json:"reason"`
	DurationHours int    `json:"duration_hours"`
}

// NewAdminAccessRequestedEvent builds a pending event carrying payload.
func NewAdminAccessRequestedEvent(payload AdminAccessRequestedPayload, now time.Time) (*OutboxEvent, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: EventTypeAdminAccessRequested,
		Payload:   string(b),
		Status:    OutboxEventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
