package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetWeather handles GET /api/weather?region=... by relaying the external
// weather provider's current conditions.
func (h *Handler) GetWeather(c *gin.Context) {
	region := c.Query("region")
	if region == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "region is required"})
		return
	}

	report, err := h.weather.Current(c.Request.Context(), region)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "weather service unavailable"})
		return
	}

	c.JSON(http.StatusOK, report)
}
