package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrilink-backend/internal/diagnosis"
	"agrilink-backend/internal/model"
	"agrilink-backend/internal/mw"
)

// Diagnose handles POST /api/diagnosis. It relays the sample to the AI
// diagnosis service, records the result durably and pushes it to the
// caller's live session when there is one.
func (h *Handler) Diagnose(c *gin.Context) {
	userID := mw.MustUserID(c)

	var req diagnosis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.diagnosis.Diagnose(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "diagnosis service unavailable"})
		return
	}

	title := fmt.Sprintf("Diagnosis ready: %s", result.Crop)
	message := fmt.Sprintf("%s (confidence %.0f%%)", result.Condition, result.Confidence*100)
	n, err := h.gateway.Notify(c.Request.Context(), userID, model.TypeDiagnosisResult, title, message, result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record diagnosis notification"})
		return
	}

	pushed := h.gateway.SendDiagnosisResult(userID, *result)

	c.JSON(http.StatusOK, gin.H{
		"result":          result,
		"notification_id": n.ID,
		"pushed":          pushed,
	})
}
