package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/chatseal/internal/user/domain"

	apperrors "github.com/allisson/chatseal/internal/errors"
)

// userRow is the scan target shared by both dialects.
type userRow struct {
	id                      uuid.UUID
	name                    string
	email                   string
	adminAccessAuthorized   bool
	adminAccessRequestedAt  sql.NullTime
	adminAccessAuthorizedAt sql.NullTime
	adminAccessReason       sql.NullString
	adminAccessExpiresAt    sql.NullTime
	adminAccessRevokedAt    sql.NullTime
	createdAt               time.Time
	updatedAt               time.Time
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:                      r.id,
		Name:                    r.name,
		Email:                   r.email,
		AdminAccessAuthorized:   r.adminAccessAuthorized,
		AdminAccessRequestedAt:  nullTimePtr(r.adminAccessRequestedAt),
		AdminAccessAuthorizedAt: nullTimePtr(r.adminAccessAuthorizedAt),
		AdminAccessReason:       nullStringPtr(r.adminAccessReason),
		AdminAccessExpiresAt:    nullTimePtr(r.adminAccessExpiresAt),
		AdminAccessRevokedAt:    nullTimePtr(r.adminAccessRevokedAt),
		CreatedAt:               r.createdAt,
		UpdatedAt:               r.updatedAt,
	}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// requireOneRow maps an update that matched nothing to ErrUserNotFound.
func requireOneRow(result sql.Result, msg string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, msg)
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
