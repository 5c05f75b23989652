package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrilink-backend/internal/model"
	"agrilink-backend/internal/mw"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutPushSubscription handles the creation or replacement of a browser
// push subscription for the authenticated user.
func (h *Handler) PutPushSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := model.PushSubscription{
		Endpoint: req.Endpoint,
		UserID:   mw.MustUserID(c),
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}

	if err := h.store.SavePushSubscription(c.Request.Context(), &sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeletePushSubscription handles the deletion of a subscription.
func (h *Handler) DeletePushSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.DeletePushSubscription(c.Request.Context(), req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPushSubscriptions lists the authenticated user's subscriptions.
func (h *Handler) GetPushSubscriptions(c *gin.Context) {
	subs, err := h.store.PushSubscriptionsForUser(c.Request.Context(), mw.MustUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	endpoints := make([]string, len(subs))
	for i, sub := range subs {
		endpoints[i] = sub.Endpoint
	}

	c.JSON(http.StatusOK, gin.H{"endpoints": endpoints})
}
