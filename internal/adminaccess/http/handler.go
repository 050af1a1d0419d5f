package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	adminAccessDomain "github.com/allisson/chatseal/internal/adminaccess/domain"
	"github.com/allisson/chatseal/internal/adminaccess/http/dto"
	adminAccessUseCase "github.com/allisson/chatseal/internal/adminaccess/usecase"
	apperrors "github.com/allisson/chatseal/internal/errors"
	"github.com/allisson/chatseal/internal/httputil"
	customValidation "github.com/allisson/chatseal/internal/validation"
)

// AdminAccessHandler handles HTTP requests for the admin access workflow.
type AdminAccessHandler struct {
	useCase adminAccessUseCase.AdminAccessUseCase
	logger  *slog.Logger
}

// NewAdminAccessHandler creates a new admin access handler.
func NewAdminAccessHandler(
	useCase adminAccessUseCase.AdminAccessUseCase,
	logger *slog.Logger,
) *AdminAccessHandler {
	return &AdminAccessHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// RequestAccessHandler asks a user for access to their content.
// POST /v1/admin/users/:user_id/access-requests - Requires admin authentication.
// Returns 201 Created with the token id and expiry. The token itself is only emailed to the user.
func (h *AdminAccessHandler) RequestAccessHandler(c *gin.Context) {
	adminID, ok := GetAdminID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req dto.RequestAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.useCase.RequestAccess(c.Request.Context(), &adminAccessDomain.RequestAccessInput{
		AdminID:       adminID,
		UserID:        userID,
		Reason:        req.Reason,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRequestAccessOutputToResponse(output))
}

// StatusHandler returns a user's admin access state.
// GET /v1/admin/users/:user_id/access - Requires admin authentication.
func (h *AdminAccessHandler) StatusHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	status, err := h.useCase.Status(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccessStatusToResponse(status))
}

// RevokeHandler withdraws a grant or pending request.
// DELETE /v1/admin/users/:user_id/access - Requires admin authentication.
// Returns 204 No Content.
func (h *AdminAccessHandler) RevokeHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	if err := h.useCase.Revoke(c.Request.Context(), userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// AuthorizeHandler redeems the token from an authorization link.
// POST /v1/admin-access/authorize - Unauthenticated, rate limited per IP.
// Returns 200 OK, 401 for an unknown or used token and 410 for an expired one.
func (h *AdminAccessHandler) AuthorizeHandler(c *gin.Context) {
	var req dto.AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, adminAccessDomain.ErrInvalidToken, h.logger)
		return
	}

	output, err := h.useCase.Authorize(c.Request.Context(), req.Token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthorizeOutputToResponse(output))
}

func (h *AdminAccessHandler) parseUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid user ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return userID, true
}
