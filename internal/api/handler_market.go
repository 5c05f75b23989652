package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMarketPrices handles GET /api/market/prices by relaying the external
// market data provider's quotes.
func (h *Handler) GetMarketPrices(c *gin.Context) {
	quotes, err := h.market.Prices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "market service unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": quotes})
}
