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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/esg-report-api/api/swagger"
	"github.com/noah-isme/esg-report-api/internal/handler"
	"github.com/noah-isme/esg-report-api/internal/repository"
	"github.com/noah-isme/esg-report-api/internal/service"
	"github.com/noah-isme/esg-report-api/pkg/cache"
	"github.com/noah-isme/esg-report-api/pkg/config"
	"github.com/noah-isme/esg-report-api/pkg/database"
	"github.com/noah-isme/esg-report-api/pkg/gri"
	"github.com/noah-isme/esg-report-api/pkg/jobs"
	"github.com/noah-isme/esg-report-api/pkg/logger"
	"github.com/noah-isme/esg-report-api/pkg/storage"
)

// @title ESG Report API
// @version 1.0.0
// @description Employees, trainings, ESG dashboards and the GRI sustainability report wizard.
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	app, err := buildApp(cfg, db, redisClient, logr)
	if err != nil {
		logr.Fatal("failed to build application", zap.Error(err))
	}

	app.queue.Start(ctx)
	app.exports.RecoverPendingJobs(ctx)
	app.exports.StartCleanup(ctx)
	app.recompute.StartTicker(ctx, app.queue, cfg.Training.RecomputeInterval)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	app.queue.Stop()
}

type application struct {
	router    *gin.Engine
	queue     *jobs.Queue
	exports   *service.ReportExportService
	recompute *service.TrainingRecomputeService
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) (*application, error) {
	validate := validator.New()
	metrics := service.NewMetricsService()

	catalog, err := gri.Default()
	if err != nil {
		return nil, fmt.Errorf("load gri catalog: %w", err)
	}
	reportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, err
	}
	documentStorage, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	programRepo := repository.NewTrainingProgramRepository(db)
	trainingRepo := repository.NewEmployeeTrainingRepository(db)
	benefitRepo := repository.NewBenefitRepository(db)
	metricRepo := repository.NewESGMetricRepository(db)
	reportRepo := repository.NewReportRepository(db)
	exportRepo := repository.NewReportExportRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Training.CacheTTL, logr, redisClient != nil)
	resolver := service.NewTrainingStatusResolver(cfg.Training.StatusSource, cfg.Training.Location())

	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, companyRepo, auditRepo, validate, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, cacheSvc, validate, logr)
	recomputeSvc := service.NewTrainingRecomputeService(trainingRepo, resolver, cacheSvc, metrics, auditRepo, logr)
	programSvc := service.NewTrainingProgramService(programRepo, trainingRepo, recomputeSvc, cacheSvc, cfg.Training.CacheTTL, validate, logr)
	trainingSvc := service.NewEmployeeTrainingService(trainingRepo, programRepo, employeeRepo, resolver, cacheSvc, cfg.Training.CacheTTL, validate, logr)
	benefitSvc := service.NewBenefitService(benefitRepo, employeeRepo, cacheSvc, validate, logr)
	metricSvc := service.NewESGMetricService(metricRepo, cacheSvc, validate, logr)
	dashboardCache := cacheSvc
	if !cfg.Dashboard.Enabled {
		dashboardCache = nil
	}
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Trainings: trainingRepo,
		Benefits:  benefitRepo,
		Employees: employeeRepo,
		Metrics:   metricRepo,
		Resolver:  resolver,
		Cache:     dashboardCache,
		Logger:    logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:       cfg.Dashboard.CacheTTL,
			ExpiringWithin: cfg.Training.ExpiringWithin,
		},
	})
	reportSvc := service.NewReportService(reportRepo, catalog, cacheSvc, cfg.Reports.CacheTTL, validate, logr)

	exporter := service.NewExportService(service.ExportServiceParams{
		Reports:    reportRepo,
		Dashboards: dashboardSvc,
		Catalog:    catalog,
		Storage:    reportStorage,
		Signer:     storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL),
		Logger:     logr,
		Config:     service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Reports.SignedURLTTL},
	})

	router := jobs.NewRouter()
	queue := jobs.NewQueue("background", router.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	exportWorker := service.NewReportExportWorker(exportRepo, exporter, metrics, cfg.Reports.WorkerRetries, logr)
	router.Register(service.JobTypeReportExport, exportWorker.Handle)
	router.Register(service.JobTypeTrainingRecompute, recomputeSvc.Handle)

	exportSvc := service.NewReportExportService(exportRepo, reportSvc, queue, exporter, auditRepo, validate, logr, service.ReportExportConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	documentSvc := service.NewDocumentService(documentRepo, employeeRepo, documentStorage,
		storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL),
		metrics, auditRepo, logr, service.DocumentServiceConfig{
			MaxFileSize:  cfg.Documents.MaxFileSizeBytes,
			MaxBatchSize: cfg.Documents.MaxBatchSize,
			AllowedMIMEs: cfg.Documents.AllowedMIMEs,
			APIPrefix:    cfg.APIPrefix,
		})

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	engine := newRouter(cfg, logr, metrics, auditRepo, authSvc, routeHandlers{
		auth:       handler.NewAuthHandler(authSvc),
		users:      handler.NewUserHandler(userSvc),
		employees:  handler.NewEmployeeHandler(employeeSvc),
		trainings:  handler.NewTrainingHandler(trainingSvc),
		programs:   handler.NewTrainingProgramHandler(programSvc),
		benefits:   handler.NewBenefitHandler(benefitSvc),
		esgMetrics: handler.NewESGMetricHandler(metricSvc),
		dashboards: handler.NewDashboardHandler(dashboardSvc),
		reports:    handler.NewReportHandler(reportSvc),
		exports:    handler.NewExportHandler(exportSvc),
		documents:  handler.NewDocumentHandler(documentSvc),
		gri:        handler.NewGRIHandler(catalog),
		system:     handler.NewMetricsHandler(metrics, checks),
	})

	return &application{router: engine, queue: queue, exports: exportSvc, recompute: recomputeSvc}, nil
}
