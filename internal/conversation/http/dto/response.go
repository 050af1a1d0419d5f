// Package dto provides data transfer objects for the admin read API.
package dto

import (
	"time"

	"github.com/allisson/chatseal/internal/conversation/domain"
)

// ConversationResponse represents a conversation in API responses.
// Title and CustomName carry the masked placeholder when Masked is set.
type ConversationResponse struct {
	ID          string    `json:"id"`
	UserID      *string   `json:"user_id"`
	Title       *string   `json:"title"`
	CustomName  *string   `json:"custom_name"`
	IsEncrypted bool      `json:"is_encrypted"`
	Masked      bool      `json:"masked"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapConversationToResponse converts a conversation view to an API response.
func MapConversationToResponse(view *domain.ConversationView) ConversationResponse {
	var userID *string
	if view.UserID.Valid {
		id := view.UserID.UUID.String()
		userID = &id
	}
	return ConversationResponse{
		ID:          view.ID.String(),
		UserID:      userID,
		Title:       view.Title,
		CustomName:  view.CustomName,
		IsEncrypted: view.IsEncrypted,
		Masked:      view.Masked,
		CreatedAt:   view.CreatedAt,
		UpdatedAt:   view.UpdatedAt,
	}
}

// ListConversationsResponse represents a paginated list of conversations in API responses.
type ListConversationsResponse struct {
	Data []ConversationResponse `json:"data"`
}

// MapConversationsToListResponse converts conversation views to a list API response.
func MapConversationsToListResponse(views []*domain.ConversationView) ListConversationsResponse {
	data := make([]ConversationResponse, 0, len(views))
	for _, view := range views {
		data = append(data, MapConversationToResponse(view))
	}
	return ListConversationsResponse{Data: data}
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Text           *string   `json:"text"`
	TranslatedText *string   `json:"translated_text"`
	IsEncrypted    bool      `json:"is_encrypted"`
	Masked         bool      `json:"masked"`
	CreatedAt      time.Time `json:"created_at"`
}

// MapMessageToResponse converts a message view to an API response.
func MapMessageToResponse(view *domain.MessageView) MessageResponse {
	return MessageResponse{
		ID:             view.ID.String(),
		ConversationID: view.ConversationID.String(),
		Role:           view.Role,
		Text:           view.Text,
		TranslatedText: view.TranslatedText,
		IsEncrypted:    view.IsEncrypted,
		Masked:         view.Masked,
		CreatedAt:      view.CreatedAt,
	}
}

// ListMessagesResponse represents a paginated list of messages in API responses.
type ListMessagesResponse struct {
	Data []MessageResponse `json:"data"`
}

// MapMessagesToListResponse converts message views to a list API response.
func MapMessagesToListResponse(views []*domain.MessageView) ListMessagesResponse {
	data := make([]MessageResponse, 0, len(views))
	for _, view := range views {
		data = append(data, MapMessageToResponse(view))
	}
	return ListMessagesResponse{Data: data}
}
