package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"agrilink-backend/internal/diagnosis"
	"agrilink-backend/internal/market"
	"agrilink-backend/internal/realtime"
	"agrilink-backend/internal/store"
	"agrilink-backend/internal/weather"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	webpush *webpush.Options
	gateway *realtime.Gateway

	verifier *realtime.Verifier
	presence *realtime.Presence
	rooms    *realtime.Rooms
	events   *realtime.Router

	diagnosis diagnosis.Service
	weather   weather.Provider
	market    market.Provider

	jwtSecret  string
	tokenTTL   time.Duration
	wsInsecure bool
}

// HandlerConfig bundles the collaborators a Handler needs.
type HandlerConfig struct {
	Store     store.Store
	Webpush   *webpush.Options
	Gateway   *realtime.Gateway
	Verifier  *realtime.Verifier
	Presence  *realtime.Presence
	Rooms     *realtime.Rooms
	Events    *realtime.Router
	Diagnosis diagnosis.Service
	Weather   weather.Provider
	Market    market.Provider

	JWTSecret            string
	TokenTTL             time.Duration
	WSInsecureSkipVerify bool
}

// NewHandler creates a new API handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		store:      cfg.Store,
		webpush:    cfg.Webpush,
		gateway:    cfg.Gateway,
		verifier:   cfg.Verifier,
		presence:   cfg.Presence,
		rooms:      cfg.Rooms,
		events:     cfg.Events,
		diagnosis:  cfg.Diagnosis,
		weather:    cfg.Weather,
		market:     cfg.Market,
		jwtSecret:  cfg.JWTSecret,
		tokenTTL:   cfg.TokenTTL,
		wsInsecure: cfg.WSInsecureSkipVerify,
	}
}
