// Package journalservice is the composition root for the journal service
// binary: configuration, dependency wiring, health checking and the HTTP
// server lifecycle.
package journalservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tendjournal/tend/internal/analyzer"
	"github.com/tendjournal/tend/internal/api"
	"github.com/tendjournal/tend/internal/auth"
	"github.com/tendjournal/tend/internal/blob"
	"github.com/tendjournal/tend/internal/config"
	"github.com/tendjournal/tend/internal/factory"
	"github.com/tendjournal/tend/internal/health"
	"github.com/tendjournal/tend/internal/history"
	"github.com/tendjournal/tend/internal/logger"
	"github.com/tendjournal/tend/internal/services"
	"github.com/tendjournal/tend/internal/store"
)

// Run starts the journal service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("journal-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("gemini_model", cfg.GeminiModel).
		Bool("gemini_key_set", cfg.GeminiAPIKey != "").
		Str("s3_bucket", cfg.S3Bucket).
		Msg("Journal service starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}

	blobs, err := blob.New(ctx, cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Blob store unavailable")
		return err
	}

	deps := buildRouter(st, blobs, cfg, log)
	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	deps.Healthz = api.BindServiceHealth(svcHealth)

	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, api.NewRouter(deps))
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildRouter wires services into the route table. The health handler is
// attached by the caller once checkers are running.
func buildRouter(st store.Store, blobs blob.Store, cfg *config.Config, log zerolog.Logger) api.Deps {
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	an := analyzer.New(cfg)
	builder := history.NewBuilder(st, log)

	return api.Deps{
		Auth:    services.NewAuthService(st, issuer, log),
		Journal: services.NewJournalService(st, an, blobs, builder, cfg.HistoryDepth, log),
		Growth:  services.NewGrowthService(st, log),
		Areas:   services.NewAreaService(st, log),
		Issuer:  issuer,
	}
}

// startHealthCheckers starts the store checker and the service aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns interval*2 with a 60 second floor.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup
// window expires. Checkers start unhealthy until their first probe.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a context cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
