package dto

import (
	"time"

	adminAccessDomain "github.com/allisson/chatseal/internal/adminaccess/domain"
)

// RequestAccessResponse is returned to the requesting admin. The token itself
// only travels to the user inside the authorization email.
type RequestAccessResponse struct {
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapRequestAccessOutputToResponse converts a request access output to an API response.
func MapRequestAccessOutputToResponse(output *adminAccessDomain.RequestAccessOutput) RequestAccessResponse {
	return RequestAccessResponse{
		TokenID:   output.TokenID.String(),
		ExpiresAt: output.ExpiresAt,
	}
}

// AuthorizeResponse describes the grant created by an authorization link.
type AuthorizeResponse struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapAuthorizeOutputToResponse converts an authorize output to an API response.
func MapAuthorizeOutputToResponse(output *adminAccessDomain.AuthorizeOutput) AuthorizeResponse {
	return AuthorizeResponse{
		UserID:    output.UserID.String(),
		ExpiresAt: output.ExpiresAt,
	}
}

// AccessStatusResponse represents a user's admin access state in API responses.
type AccessStatusResponse struct {
	UserID       string     `json:"user_id"`
	State        string     `json:"state"`
	Reason       *string    `json:"reason,omitempty"`
	RequestedAt  *time.Time `json:"requested_at,omitempty"`
	AuthorizedAt *time.Time `json:"authorized_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// MapAccessStatusToResponse converts a domain access status to an API response.
func MapAccessStatusToResponse(status *adminAccessDomain.AccessStatus) AccessStatusResponse {
	return AccessStatusResponse{
		UserID:       status.UserID.String(),
		State:        string(status.State),
		Reason:       status.Reason,
		RequestedAt:  status.RequestedAt,
		AuthorizedAt: status.AuthorizedAt,
		ExpiresAt:    status.ExpiresAt,
	}
}
