// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/errors"
)

// User represents a user in the system together with the state of the
// time-boxed admin access the user has granted.
//
// Invariant: AdminAccessAuthorized implies AdminAccessExpiresAt is set. Once
// the expiry has passed the grant is no longer honoured and the next check
// clears it.
type User struct {
	ID                      uuid.UUID
	Name                    string
	Email                   string
	AdminAccessAuthorized   bool
	AdminAccessRequestedAt  *time.Time
	AdminAccessAuthorizedAt *time.Time
	AdminAccessReason       *string
	AdminAccessExpiresAt    *time.Time
	AdminAccessRevokedAt    *time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// AdminAccessActive reports whether the user's grant is in force at now.
func (u *User) AdminAccessActive(now time.Time) bool {
	return u.AdminAccessAuthorized && u.AdminAccessExpiresAt != nil && !now.After(*u.AdminAccessExpiresAt)
}

// AdminAccessExpired reports whether the user still carries a grant flag that
// should no longer be honoured at now.
func (u *User) AdminAccessExpired(now time.Time) bool {
	return u.AdminAccessAuthorized && !u.AdminAccessActive(now)
}

// HasContactAddress reports whether an authorization email can be sent to the user.
func (u *User) HasContactAddress() bool {
	return u.Email != ""
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")
)
