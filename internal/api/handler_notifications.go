package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agrilink-backend/internal/model"
	"agrilink-backend/internal/mw"
	"agrilink-backend/internal/store"
)

// ListNotifications handles GET /api/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	userID := mw.MustUserID(c)

	unreadOnly := c.Query("unread") == "true"
	limit := 50
	if v := c.Query("limit"); v != "" {
		if x, err := strconv.Atoi(v); err == nil && x > 0 && x <= 200 {
			limit = x
		}
	}

	notifications, err := h.store.NotificationsForUser(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// MarkNotificationRead handles POST /api/notifications/:id/read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID := mw.MustUserID(c)
	id := c.Param("id")

	n, err := h.store.NotificationByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	if n.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}

	if err := h.store.UpdateNotificationStatus(c.Request.Context(), id, model.StatusRead); err != nil {
		if errors.Is(err, store.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read_all.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	userID := mw.MustUserID(c)

	if err := h.store.MarkAllRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteNotification handles DELETE /api/notifications/:id.
func (h *Handler) DeleteNotification(c *gin.Context) {
	userID := mw.MustUserID(c)

	if err := h.store.DeleteNotification(c.Request.Context(), c.Param("id"), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
