package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gocomet/fleet-rides/internal/api/dto"
	"github.com/gocomet/fleet-rides/internal/api/middleware"
	apperrors "github.com/gocomet/fleet-rides/pkg/errors"
)

// ListNotifications handles GET /v1/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	notifications, err := h.Notify.ListByRecipient(c.Request.Context(), actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// MarkNotificationRead handles POST /v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	actor, _ := middleware.PrincipalFrom(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperrors.Validation("notification id must be a UUID", err))
		return
	}
	if err := h.Notify.MarkRead(c.Request.Context(), id, actor.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Notification marked read"})
}
