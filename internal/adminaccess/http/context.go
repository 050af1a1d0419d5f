// Package http provides HTTP handlers and middleware for the admin access API.
package http

import (
	"context"

	"github.com/google/uuid"
)

// adminIDKey is a context key type for storing the authenticated admin id.
type adminIDKey struct{}

// WithAdminID stores the authenticated admin id in the context.
func WithAdminID(ctx context.Context, adminID uuid.UUID) context.Context {
	return context.WithValue(ctx, adminIDKey{}, adminID)
}

// GetAdminID retrieves the authenticated admin id from the context.
func GetAdminID(ctx context.Context) (uuid.UUID, bool) {
	adminID, ok := ctx.Value(adminIDKey{}).(uuid.UUID)
	return adminID, ok
}
