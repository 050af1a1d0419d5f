package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdminAccessRequestedEvent(t *testing.T) {
	now := time.Now().UTC()
	payload := AdminAccessRequestedPayload{
		To:            "user@example.com",
		Link:          "https://chat.example.com/admin-access/authorize?token=abc",
		Reason:        "investigating a billing dispute",
		DurationHours: 24,
	}

	event, err := NewAdminAccessRequestedEvent(payload, now)
	require.NoError(t, err)
	assert.Equal(t, EventTypeAdminAccessRequested, event.EventType)
	assert.Equal(t, OutboxEventStatusPending, event.Status)
	assert.Equal(t, 0, event.Retries)
	assert.Equal(t, now, event.CreatedAt)

	var decoded AdminAccessRequestedPayload
	require.NoError(t, json.Unmarshal([]byte(event.Payload), &decoded))
	assert.Equal(t, payload, decoded)
}
