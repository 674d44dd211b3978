package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aglm/review-api/internal/handler"
	"github.com/aglm/review-api/internal/middleware"
	"github.com/aglm/review-api/internal/migrations"
	"github.com/aglm/review-api/internal/repository"
	"github.com/aglm/review-api/internal/reviewer"
	"github.com/aglm/review-api/internal/service"
	"github.com/aglm/review-api/pkg/cache"
	"github.com/aglm/review-api/pkg/config"
	"github.com/aglm/review-api/pkg/database"
	"github.com/aglm/review-api/pkg/logger"
	corsmiddleware "github.com/aglm/review-api/pkg/middleware/cors"
	reqidmiddleware "github.com/aglm/review-api/pkg/middleware/requestid"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrations.NewMigrator(db, logr).Run(ctx); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	feedbackRepo := repository.NewFeedbackRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	var rev reviewer.Reviewer
	if cfg.Reviewer.Enabled {
		rev = reviewer.NewOpenAI(cfg.Reviewer)
	}

	queueSvc := service.NewQueueService(feedbackRepo, cfg.Queue, metricsSvc, logr)
	reviewSvc := service.NewReviewService(feedbackRepo, metricsSvc, logr)
	riskSvc := service.NewRiskService(feedbackRepo, cfg.Risk, logr)
	ingestSvc := service.NewIngestService(submissionRepo, studentRepo, rev, cfg.Ingest, metricsSvc, nil, logr)
	ingestSvc.Start(ctx)
	defer ingestSvc.Stop()

	var exportSvc *service.ExportService
	if cfg.Reports.Enabled {
		exportSvc = service.NewExportService(submissionRepo, feedbackRepo, cacheRepo, cfg.Reports, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/repos", handler.NewRepoHandler(riskSvc).List)

		queueHandler := handler.NewQueueHandler(queueSvc)
		api.GET("/queue", queueHandler.List)
		api.GET("/repos/:repo/queue", queueHandler.ListForRepo)

		api.POST("/feedback/:id/review", handler.NewReviewHandler(reviewSvc).MarkReviewed)
		api.POST("/submissions", handler.NewIngestHandler(ingestSvc).Create)

		if exportSvc != nil {
			api.GET("/repos/:repo/report", handler.NewReportHandler(exportSvc).Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
