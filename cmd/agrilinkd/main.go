package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"agrilink-backend/config"
	"agrilink-backend/internal/api"
	"agrilink-backend/internal/db"
	"agrilink-backend/internal/diagnosis"
	"agrilink-backend/internal/market"
	"agrilink-backend/internal/notification"
	"agrilink-backend/internal/realtime"
	"agrilink-backend/internal/store"
	"agrilink-backend/internal/weather"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stdout, "agrilink ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("auth.jwt_secret must be configured")
	}
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Push worker pool for the web-push channel of stored notifications.
	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions)
	workerPool.Start(ctx)

	// Realtime core: presence, rooms, router, persistence bridge, gateway.
	presence := realtime.NewPresence()
	rooms := realtime.NewRooms()
	events := realtime.NewRouter(presence, rooms)
	bridge := realtime.NewBridge(appStore, events, workerPool)
	gateway := realtime.NewGateway(events, bridge)
	verifier := realtime.NewVerifier(cfg.Auth.JWTSecret, appStore, cfg.Auth.HandshakeTimeout)

	// Background weather alert poller.
	weatherProvider := weather.NewHTTPProvider(cfg.Weather.URL)
	weatherSvc := weather.NewService(&cfg.Weather, weatherProvider, gateway)
	go weatherSvc.Run(ctx)

	// Passive notification expiry sweep.
	go runExpirySweeper(ctx, appStore, logger)

	handler := api.NewHandler(api.HandlerConfig{
		Store:                appStore,
		Webpush:              &webpushOptions,
		Gateway:              gateway,
		Verifier:             verifier,
		Presence:             presence,
		Rooms:                rooms,
		Events:               events,
		Diagnosis:            diagnosis.NewHTTPService(cfg.Services.DiagnosisURL),
		Weather:              weatherProvider,
		Market:               market.NewHTTPProvider(cfg.Services.MarketURL),
		JWTSecret:            cfg.Auth.JWTSecret,
		TokenTTL:             cfg.Auth.TokenTTL,
		WSInsecureSkipVerify: cfg.Server.WSInsecureSkipVerify,
	})

	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

// runExpirySweeper deletes notifications whose expiry time has elapsed.
func runExpirySweeper(ctx context.Context, s store.Store, logger *log.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpiredNotifications(ctx, time.Now().UTC())
			if err != nil {
				logger.Printf("expiry sweep failed: %v", err)
			} else if n > 0 {
				logger.Printf("expiry sweep removed %d notification(s)", n)
			}
		}
	}
}
