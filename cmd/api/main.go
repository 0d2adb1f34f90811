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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studysync-api/internal/handler"
	"github.com/noah-isme/studysync-api/internal/repository"
	"github.com/noah-isme/studysync-api/internal/service"
	"github.com/noah-isme/studysync-api/pkg/cache"
	"github.com/noah-isme/studysync-api/pkg/config"
	"github.com/noah-isme/studysync-api/pkg/database"
	"github.com/noah-isme/studysync-api/pkg/jobs"
	"github.com/noah-isme/studysync-api/pkg/logger"
	"github.com/noah-isme/studysync-api/pkg/storage"
)

// @title StudySync API
// @version 1.0.0
// @description Homework study planner: schedules study blocks around weekly commitments and exports them as calendars.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	plannerOpts, err := service.PlannerOptions(cfg.Planner)
	if err != nil {
		return fmt.Errorf("planner config: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	homeworkRepo := repository.NewHomeworkRepository(db)
	commitmentRepo := repository.NewCommitmentRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	exportRepo := repository.NewExportRepository(db)
	ledgerRepo := repository.NewExportLedgerRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	var cacheStore service.CacheRepository
	if cacheRepo.Enabled() {
		cacheStore = cacheRepo
	}
	cacheSvc := service.NewCacheService(cacheStore, metrics, cfg.Cache.ScheduleTTL, logr, cfg.Cache.Enabled)

	tokens := service.NewTokenService(cfg.JWT)
	homeworkSvc := service.NewHomeworkService(homeworkRepo, scheduleRepo, cacheSvc, validate, logr)
	commitmentSvc := service.NewCommitmentService(commitmentRepo, validate, logr)
	preferenceSvc := service.NewPreferenceService(preferenceRepo, cfg.Planner, validate, logr)
	scheduleSvc := service.NewScheduleService(homeworkRepo, commitmentRepo, preferenceRepo, scheduleRepo, cacheSvc, metrics, validate, logr, plannerOpts...)
	calendarSvc := service.NewCalendarService(scheduleRepo, commitmentRepo, ledgerRepo, metrics, cfg.Exports, logr)

	files, err := storage.NewFileStore(cfg.Exports.StorageDir)
	if err != nil {
		return err
	}
	signer := storage.NewDownloadSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	worker := service.NewExportWorker(exportRepo, calendarSvc, files, signer, cfg.APIPrefix, logr)
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		OnGiveUp:   worker.MarkFailed,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	exportSvc := service.NewExportJobService(exportRepo, queue, files, signer, validate, logr, service.ExportJobConfig{
		APIPrefix:       cfg.APIPrefix,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	exportSvc.RecoverPendingJobs(ctx)
	exportSvc.StartCleanup(ctx)

	handlers := routeHandlers{
		homework:    handler.NewHomeworkHandler(homeworkSvc),
		commitments: handler.NewCommitmentHandler(commitmentSvc),
		preferences: handler.NewPreferenceHandler(preferenceSvc),
		schedule:    handler.NewScheduleHandler(scheduleSvc, calendarSvc, logr),
		exports:     handler.NewExportHandler(exportSvc, calendarSvc),
		metrics: handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
			"database": handler.PingFunc(db.PingContext),
			"cache":    cacheRepo,
		}),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(cfg, logr, tokens, metrics, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
