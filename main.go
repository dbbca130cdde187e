package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"companychallenges/api/access"
	"companychallenges/api/analytics"
	"companychallenges/api/config"
	"companychallenges/api/database"
	"companychallenges/api/handlers"
	"companychallenges/api/store"
)

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("invalid configuration", err)
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	ctx := context.Background()

	// --- PostgreSQL (content, admins, default event log) ---
	dbClient, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("failed to initialize PostgreSQL database", err)
	}
	defer dbClient.Close()

	if err := database.Migrate(ctx, dbClient.DB); err != nil {
		fatal("failed to apply migrations", err)
	}

	// --- Event log ---
	var events analytics.EventLog = store.NewPostgresEventLog(dbClient.DB)
	if cfg.EventStore == config.EventStoreClickHouse {
		chClient, err := database.NewClickHouseDB(ctx, cfg.ClickHouse)
		if err != nil {
			fatal("failed to initialize ClickHouse database", err)
		}
		defer chClient.Close()

		chLog := store.NewClickHouseEventLog(chClient)
		if err := chLog.EnsureSchema(ctx); err != nil {
			fatal("failed to prepare ClickHouse schema", err)
		}
		events = chLog
	}
	slog.Info("analytics event store selected", "store", cfg.EventStore)

	// --- Password attempt limiter ---
	var limiter access.Limiter = access.NoLimit{}
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			fatal("failed to initialize Redis", err)
		}
		defer rdb.Close()
		limiter = access.NewRedisLimiter(rdb, cfg.PasswordAttemptLimit, cfg.PasswordAttemptWindow)
	}

	// --- Stores ---
	contentStore := store.NewContentStore(dbClient.DB)
	adminStore := store.NewAdminStore(dbClient.DB)

	adminConfigured := cfg.AdminEmail != "" && cfg.AdminPassword != ""
	if adminConfigured {
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			fatal("failed to hash admin password", err)
		}
		if _, err := adminStore.EnsureAdmin(ctx, strings.ToLower(strings.TrimSpace(cfg.AdminEmail)), hashed); err != nil {
			fatal("failed to provision admin user", err)
		}
	} else {
		slog.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set; admin login is unavailable until an admin exists")
	}

	// --- Services and handlers ---
	secret := []byte(cfg.JWTSecret)
	recorder := analytics.NewRecorder(events).WithScopeCheck(contentStore)
	aggregator := analytics.NewAggregator(events, contentStore)
	gate := access.NewGate(secret, cfg.AccessGrantTTL, cfg.SecureCookies)

	health := handlers.NewHealthHandlers(contentStore, handlers.HealthConfig{
		EventStore:       cfg.EventStore,
		Limiter:          cfg.RedisURL != "",
		AdminConfigured:  adminConfigured,
		SecureCookies:    cfg.SecureCookies,
		FrontendOrigin:   cfg.FrontendOrigin,
		AccessGrantHours: int(cfg.AccessGrantTTL / time.Hour),
	})

	r := handlers.NewRouter(handlers.RouterDeps{
		Public:         handlers.NewPublicHandlers(contentStore, recorder, gate, limiter),
		Track:          handlers.NewTrackHandlers(recorder),
		Labels:         handlers.NewLabelHandlers(contentStore),
		Auth:           handlers.NewAuthHandlers(adminStore, secret, cfg.SecureCookies),
		Admin:          handlers.NewAdminHandlers(contentStore),
		Analytics:      handlers.NewAnalyticsHandlers(aggregator, health),
		Health:         health,
		JWTSecret:      secret,
		FrontendOrigin: cfg.FrontendOrigin,
		SecureCookies:  cfg.SecureCookies,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("API server starting", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("API server failed to start", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exiting")
}
