package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/formcoach/internal/adapters/http/api"
	"github.com/okian/formcoach/internal/adapters/http/swagger"
	service "github.com/okian/formcoach/internal/app"
	"github.com/okian/formcoach/internal/config"
	"github.com/okian/formcoach/internal/domain/analyzer"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/rep"
	"github.com/okian/formcoach/internal/domain/workout"
	"github.com/okian/formcoach/pkg/logger"
	"github.com/okian/formcoach/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("invalid log_format: " + err.Error() + "\n")
		return
	}
	if err := logger.Init(logger.WithFormat(format)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// newService builds the coaching service from configuration. The catalog
// comes from cfg.CatalogFile when set, the built-in one otherwise.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	catalog := exercise.Default()
	if cfg.CatalogFile != "" {
		c, err := exercise.LoadFile(ctx, cfg.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		catalog = c
	}

	policy, err := rep.ParseScorePolicy(cfg.RepScorePolicy)
	if err != nil {
		return nil, err
	}

	return service.New(
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithCatalog(catalog),
		service.WithSessionTTL(cfg.SessionTTL()),
		service.WithSessionOptions(
			workout.WithAnalyzers(analyzer.NewRegistry(analyzer.WithScorerWeight(cfg.ScorerWeight))),
			workout.WithSmoothingWindow(cfg.SmoothingWindow),
			workout.WithMinVisibility(cfg.MinVisibility),
			workout.WithDepth(cfg.UseDepth),
			workout.WithCounterOptions(
				rep.WithFeedbackHistory(cfg.FeedbackHistory),
				rep.WithScorePolicy(policy),
			),
		),
	), nil
}

// newMux registers the API and its documentation.
func newMux(ctx context.Context, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater periodically mirrors service stats into gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if sessions, ok := stats["sessions"].(int); ok {
		metrics.UpdateSessionsActive(sessions)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
