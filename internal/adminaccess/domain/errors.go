package domain

import (
	"github.com/allisson/chatseal/internal/errors"
)

// Admin access errors.
var (
	// ErrInvalidToken indicates the authorization token does not exist.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid authorization token")

	// ErrTokenAlreadyUsed indicates the authorization token was already redeemed
	// or superseded by a newer request.
	ErrTokenAlreadyUsed = errors.Wrap(ErrInvalidToken, "authorization token already used")

	// ErrExpiredToken indicates the authorization token is past its expiry.
	ErrExpiredToken = errors.Wrap(errors.ErrExpired, "authorization token expired")

	// ErrTokenNotFound is returned by repositories when no token matches.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "authorization token not found")

	// ErrNoContactAddress indicates the user has no email to send the request to.
	ErrNoContactAddress = errors.Wrap(errors.ErrInvalidInput, "user has no contact address")
)
