package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jakubzver/footboard/external/footballapi"
	"github.com/jakubzver/footboard/external/notify"
	"github.com/jakubzver/footboard/internal/config"
	"github.com/jakubzver/footboard/internal/infrastructure/repository/postgres"
	"github.com/jakubzver/footboard/internal/interfaces/httpapi"
	"github.com/jakubzver/footboard/internal/platform/cache"
	"github.com/jakubzver/footboard/internal/platform/logging"
	"github.com/jakubzver/footboard/internal/platform/resilience"
	"github.com/jakubzver/footboard/internal/usecase"
)

// NewHTTPServer wires repositories, provider clients and usecase services into
// a ready-to-run HTTP server. The returned cleanup closes the database pool
// and must be called after the server shuts down.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("close database", "error", closeErr)
		}
	}

	leagueRepo := postgres.NewLeagueRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	standingRepo := postgres.NewStandingRepository(db)

	provider := footballapi.NewClient(footballapi.ClientConfig{
		BaseURL:    cfg.FootballAPIBaseURL,
		Host:       cfg.FootballAPIHost,
		APIKey:     cfg.FootballAPIKey,
		Timeout:    cfg.FootballAPITimeout,
		MaxRetries: cfg.FootballAPIMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballAPICircuitEnabled,
			FailureThreshold: cfg.FootballAPICircuitFailureCount,
			OpenTimeout:      cfg.FootballAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballAPICircuitHalfOpenMaxReq,
		},
	})

	var notifier usecase.SyncNotifier
	if cfg.WebhookEnabled {
		webhook := notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:       cfg.WebhookURL,
			AuthToken: cfg.WebhookAuthToken,
			Timeout:   cfg.WebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMax,
			},
		}, logger)
		if webhook.Enabled() {
			notifier = webhook
		}
	}

	cacheStore := cache.NewDisabledStore()
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
	}

	syncSvc := usecase.NewSyncService(provider, leagueRepo, teamRepo, matchRepo, standingRepo, notifier, logger)
	stalenessSvc := usecase.NewStalenessService(leagueRepo, matchRepo, standingRepo, usecase.StalenessConfig{
		MaxAge:         cfg.StalenessMaxAge,
		FinishedGrace:  cfg.StalenessFinishedGrace,
		UpcomingWindow: cfg.StalenessUpcomingWindow,
	}, logger)
	resyncSvc := usecase.NewResyncService(syncSvc, stalenessSvc, cfg.ResyncWorkers, logger)
	dashboardSvc := usecase.NewDashboardService(leagueRepo, teamRepo, matchRepo, standingRepo, cacheStore, logger)
	projectionSvc := usecase.NewProjectionService(leagueRepo, teamRepo, matchRepo, standingRepo, logger)

	handler := httpapi.NewHandler(
		dashboardSvc,
		projectionSvc,
		stalenessSvc,
		syncSvc,
		resyncSvc,
		logger,
		cfg.VerboseErrors(),
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}
