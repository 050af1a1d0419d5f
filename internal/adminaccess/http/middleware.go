package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	adminAccessService "github.com/allisson/chatseal/internal/adminaccess/service"
	apperrors "github.com/allisson/chatseal/internal/errors"
	"github.com/allisson/chatseal/internal/httputil"
)

// AdminIDHeader names the header carrying the acting admin's id.
const AdminIDHeader = "X-Admin-ID"

// AdminAuthenticationMiddleware authenticates admin API calls.
//
// The middleware:
// 1. Extracts the Bearer key from the Authorization header (case-insensitive)
// 2. Verifies it against the configured Argon2id hash
// 3. Parses the X-Admin-ID header and stores the admin id in the request context
//
// Error handling:
//   - Missing, malformed or wrong key → 401 Unauthorized
//   - No key hash configured → 401 Unauthorized for every call
//   - Missing or invalid X-Admin-ID → 401 Unauthorized
func AdminAuthenticationMiddleware(
	keyHash string,
	keyService adminAccessService.AdminKeyService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		const bearerPrefix = "bearer "
		if len(authHeader) <= len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("admin authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !keyService.CompareKey(authHeader[len(bearerPrefix):], keyHash) {
			logger.Debug("admin authentication failed: invalid admin key")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		adminID, err := uuid.Parse(c.GetHeader(AdminIDHeader))
		if err != nil || adminID == uuid.Nil {
			logger.Debug("admin authentication failed: invalid admin id header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithAdminID(c.Request.Context(), adminID))
		c.Next()
	}
}
