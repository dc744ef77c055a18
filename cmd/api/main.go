package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/notification-orchestrator/internal/adapters/events"
	"github.com/zatekoja/notification-orchestrator/internal/api/handlers"
	"github.com/zatekoja/notification-orchestrator/internal/api/routes"
	"github.com/zatekoja/notification-orchestrator/internal/api/validation"
	"github.com/zatekoja/notification-orchestrator/internal/application/services"
	"github.com/zatekoja/notification-orchestrator/internal/bootstrap"
	"github.com/zatekoja/notification-orchestrator/internal/domain/providers"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
	"github.com/zatekoja/notification-orchestrator/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Env, cfg.Log.Level)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize the preference store (backend, instrumentation, cache)
	store, err := bootstrap.OpenStore(ctx, cfg, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize preference store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing preference store")
		}
	}()

	// Every instance tags its change events so it can skip its own
	origin := uuid.NewString()

	var eventBus providers.EventBus
	if store.Redis != nil {
		eventBus = events.NewRedisEventBus(store.Redis)
		log.Info().Msg("Event bus initialized")
	} else {
		log.Info().Msg("Event bus disabled (Redis not available)")
	}

	// Initialize services
	preferenceService := services.NewPreferenceService(store.Repository, metrics)
	if eventBus != nil {
		preferenceService.SetEventBus(eventBus, origin)
	}
	decisionService := services.NewDecisionService(store.Repository, metrics)

	var cacheInvalidationService *services.CacheInvalidationService
	if store.Cache != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(store.Cache, eventBus, origin)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start cache invalidation service")
			cacheInvalidationService = nil
		}
	}

	// Initialize handlers
	validator := validation.New(cfg.Notify.Channels)
	router := routes.NewRouter(
		handlers.NewEventHandler(decisionService, validator),
		handlers.NewPreferenceHandler(preferenceService, validator),
		handlers.NewHealthHandler(preferenceService),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("storage", cfg.Storage.Backend).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Server shutting down")
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	// Stop cache invalidation service
	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}
