// Package http provides the admin read endpoints for conversations and messages.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	adminAccessHTTP "github.com/allisson/chatseal/internal/adminaccess/http"
	"github.com/allisson/chatseal/internal/conversation/http/dto"
	conversationUseCase "github.com/allisson/chatseal/internal/conversation/usecase"
	apperrors "github.com/allisson/chatseal/internal/errors"
	"github.com/allisson/chatseal/internal/httputil"
)

// AdminReadHandler serves conversation content to admins.
type AdminReadHandler struct {
	useCase conversationUseCase.AdminReadUseCase
	logger  *slog.Logger
}

// NewAdminReadHandler creates a new admin read handler.
func NewAdminReadHandler(useCase conversationUseCase.AdminReadUseCase, logger *slog.Logger) *AdminReadHandler {
	return &AdminReadHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// ListUserConversationsHandler lists a user's conversations.
// GET /v1/admin/users/:user_id/conversations?offset=0&limit=50 - Requires admin authentication.
// Content is masked unless the user has a live grant.
func (h *AdminReadHandler) ListUserConversationsHandler(c *gin.Context) {
	adminID, ok := adminAccessHTTP.GetAdminID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	userID, ok := h.parseUUIDParam(c, "user_id")
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	views, err := h.useCase.ListUserConversations(c.Request.Context(), adminID, userID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapConversationsToListResponse(views))
}

// ListConversationMessagesHandler lists the messages of a conversation.
// GET /v1/admin/conversations/:conversation_id/messages?offset=0&limit=50 - Requires admin authentication.
func (h *AdminReadHandler) ListConversationMessagesHandler(c *gin.Context) {
	adminID, ok := adminAccessHTTP.GetAdminID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	conversationID, ok := h.parseUUIDParam(c, "conversation_id")
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	views, err := h.useCase.ListConversationMessages(c.Request.Context(), adminID, conversationID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapMessagesToListResponse(views))
}

func (h *AdminReadHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid %s format: must be a valid UUID", name),
			h.logger)
		return uuid.Nil, false
	}
	return id, true
}
