package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/tagihan-dashboard/internal/config"
	"github.com/stemsi/tagihan-dashboard/internal/database"
	"github.com/stemsi/tagihan-dashboard/internal/handler"
	"github.com/stemsi/tagihan-dashboard/internal/logger"
	"github.com/stemsi/tagihan-dashboard/internal/metrics"
	"github.com/stemsi/tagihan-dashboard/internal/middleware"
	"github.com/stemsi/tagihan-dashboard/internal/model"
	"github.com/stemsi/tagihan-dashboard/internal/repository"
	"github.com/stemsi/tagihan-dashboard/internal/router"
	"github.com/stemsi/tagihan-dashboard/internal/service"
	"github.com/stemsi/tagihan-dashboard/internal/upstream"
	"github.com/stemsi/tagihan-dashboard/internal/validator"
	"github.com/stemsi/tagihan-dashboard/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("upstream", cfg.UpstreamURL).
		Str("timezone", cfg.Location.String()).
		Msg("Starting Tagihan Dashboard")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	m := metrics.Default()

	// ─── Upstream API ──────────────────────────────────────────────────
	upstreamClient := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamToken, cfg.UpstreamTimeout).
		WithObserver(m)

	// ─── Initialize Repositories ───────────────────────────────────────
	snapshotRepo := repository.NewSnapshotRepository(rdb)
	rekapRepo := repository.NewRekapRepository(pool)
	rekapQueue := repository.NewRekapQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	snapshotService := service.NewSnapshotService(upstreamClient, snapshotRepo, rekapQueue, m, cfg.SnapshotTTL, cfg.Location, log)
	tagihanService := service.NewTagihanService(snapshotService, upstreamClient, cfg.PageSize, cfg.TopArrearsLimit)
	studentService := service.NewStudentService(snapshotService, cfg.PageSize)
	classService := service.NewClassService(snapshotService)
	majorService := service.NewMajorService(snapshotService)
	kasService := service.NewKasService(snapshotService, upstreamClient, cfg.PageSize)
	dashboardService := service.NewDashboardService(snapshotService, rekapRepo, cfg.TopArrearsLimit)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Tagihan:   handler.NewTagihanHandler(tagihanService),
		Student:   handler.NewStudentHandler(studentService),
		Class:     handler.NewClassHandler(classService),
		Major:     handler.NewMajorHandler(majorService),
		Kas:       handler.NewKasHandler(kasService),
		Refresh:   handler.NewRefreshHandler(snapshotService),
		Monitor:   handler.NewMonitorHandler(rdb, snapshotService, m, log),
		WS:        handler.NewWSHandler(rdb, snapshotService, m, log, cfg.AllowedOrigins),
		System:    handler.NewSystemHandler(rdb, snapshotService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	rekapWorker := worker.NewRekapWorker(rekapRepo, rdb, log)
	refreshWorker := worker.NewRefreshWorker(snapshotService, cfg.RefreshInterval, log)

	go rekapWorker.Start(workerCtx)
	go refreshWorker.Start(workerCtx)

	// ─── Prewarm Snapshot ─────────────────────────────────────────────
	// Fetch once before accepting traffic so the first dashboards do not
	// all wait on the upstream. A failure here is not fatal.
	if _, err := snapshotService.Refresh(ctx, model.RefreshReasonColdStart); err != nil {
		log.Warn().Err(err).Msg("Snapshot prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	refreshLimiter := middleware.NewRateLimiter(rdb, cfg.RefreshRateLimit, time.Minute, log)
	r := router.SetupRouter(handlers, refreshLimiter, m, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and let the rekap worker flush.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
