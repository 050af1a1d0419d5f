// Package dto provides data transfer objects for the admin access HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/chatseal/internal/validation"
)

// RequestAccessRequest contains the parameters of an admin access request.
type RequestAccessRequest struct {
	Reason        string `json:"reason"`
	DurationHours int    `json:"duration_hours"`
}

// Validate checks the request shape. Bounds on the duration are enforced by the use case.
func (r *RequestAccessRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason,
			validation.Required,
			customValidation.NotBlank,
			customValidation.RuneLength(3, 500),
		),
		validation.Field(&r.DurationHours,
			validation.Required,
			validation.Min(1),
		),
	)
}

// AuthorizeRequest carries the token from an authorization link.
type AuthorizeRequest struct {
	Token string `json:"token"`
}

// Validate checks if the authorize request is valid.
func (r *AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.AuthorizationToken,
		),
	)
}
