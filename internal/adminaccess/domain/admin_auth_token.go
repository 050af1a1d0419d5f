// Package domain defines the admin access authorization entities and errors.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminAuthToken is a single-use authorization token issued when an admin
// requests access to a user's content. Only the SHA-256 hash of the plain
// token is stored.
type AdminAuthToken struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AdminID       uuid.UUID
	TokenHash     string
	Reason        string
	DurationHours int
	Used          bool
	UsedAt        *time.Time
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// IsExpired reports whether the token can no longer be redeemed at now.
func (t *AdminAuthToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// AccessState is the state of admin access for one user.
type AccessState string

const (
	// AccessStateNone means no access was ever requested.
	AccessStateNone AccessState = "none"
	// AccessStateRequested means a request is pending the user's authorization.
	AccessStateRequested AccessState = "requested"
	// AccessStateAuthorized means the user granted access and it has not expired.
	AccessStateAuthorized AccessState = "authorized"
	// AccessStateExpired means a grant existed and its window has passed.
	AccessStateExpired AccessState = "expired"
	// AccessStateRevoked means a grant or request was withdrawn before expiry.
	AccessStateRevoked AccessState = "revoked"
)

// AccessStatus is a snapshot of a user's admin access state.
type AccessStatus struct {
	UserID       uuid.UUID
	State        AccessState
	Reason       *string
	RequestedAt  *time.Time
	AuthorizedAt *time.Time
	ExpiresAt    *time.Time
}

// RequestAccessInput contains the parameters of an admin access request.
type RequestAccessInput struct {
	AdminID       uuid.UUID
	UserID        uuid.UUID
	Reason        string
	DurationHours int
}

// RequestAccessOutput is returned to the requesting admin. PlainToken is
// embedded in AuthorizationLink and is never stored.
type RequestAccessOutput struct {
	TokenID           uuid.UUID
	PlainToken        string
	AuthorizationLink string
	ExpiresAt         time.Time
}

// AuthorizeOutput describes the grant created by redeeming a token.
type AuthorizeOutput struct {
	UserID    uuid.UUID
	AdminID   uuid.UUID
	ExpiresAt time.Time
}
