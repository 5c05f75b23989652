package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"agrilink-backend/config"
	"agrilink-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// Realtime endpoint authenticates itself during the handshake.
	r.GET("/ws", h.HandleWS)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
		api.GET("/weather", caching, h.GetWeather)
		api.GET("/market/prices", caching, h.GetMarketPrices)

		authed := api.Group("")
		authed.Use(mw.Auth(h.jwtSecret))
		{
			authed.GET("/notifications", h.ListNotifications)
			authed.POST("/notifications/:id/read", h.MarkNotificationRead)
			authed.POST("/notifications/read_all", h.MarkAllNotificationsRead)
			authed.DELETE("/notifications/:id", h.DeleteNotification)

			authed.GET("/push_subscriptions", h.GetPushSubscriptions)
			authed.PUT("/push_subscriptions", h.PutPushSubscription)
			authed.DELETE("/push_subscriptions", h.DeletePushSubscription)

			authed.POST("/diagnosis", h.Diagnose)

			authed.GET("/communities/:id/posts", h.ListCommunityPosts)
			authed.POST("/communities/:id/posts", h.CreateCommunityPost)
		}
	}

	return r
}
