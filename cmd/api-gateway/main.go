package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/contact-log-api/api/swagger"
	"github.com/noah-isme/contact-log-api/internal/handler"
	internalmiddleware "github.com/noah-isme/contact-log-api/internal/middleware"
	"github.com/noah-isme/contact-log-api/internal/repository"
	"github.com/noah-isme/contact-log-api/internal/service"
	"github.com/noah-isme/contact-log-api/migrations"
	"github.com/noah-isme/contact-log-api/pkg/cache"
	"github.com/noah-isme/contact-log-api/pkg/config"
	"github.com/noah-isme/contact-log-api/pkg/database"
	"github.com/noah-isme/contact-log-api/pkg/export"
	"github.com/noah-isme/contact-log-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/contact-log-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/contact-log-api/pkg/middleware/requestid"
	"github.com/noah-isme/contact-log-api/pkg/schoolday"
)

// @title Contact Log API
// @version 1.0.0
// @description Daily student contact log: submission, homeroom review and administrative unlock
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database unavailable", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.Files, logr); err != nil {
			logr.Sugar().Fatalw("migration failed", "error", err)
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis unavailable", "error", err)
	}

	validate := validator.New()
	location := cfg.School.Location()

	entryRepo := repository.NewEntryRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRoomRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "contact-log", logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheRepo.Enabled())
	resolver := schoolday.NewResolver(nil, location)

	holidaySvc := service.NewHolidayService(holidayRepo, cacheSvc, auditRepo, resolver, validate, logr, service.HolidayServiceConfig{
		LookbackDays: cfg.Holidays.LookbackDays,
		CacheTTL:     cfg.Holidays.CacheTTL,
	})
	entrySvc := service.NewEntryService(entryRepo, studentRepo, holidaySvc, resolver, cacheSvc, metricsSvc, auditRepo, validate, logr, service.EntryServiceConfig{
		SubmitMaxAttempts: cfg.Entries.SubmitMaxAttempts,
	})
	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	dashboardSvc := service.NewDashboardService(classRepo, studentRepo, entryRepo, entrySvc, cacheSvc, logr, service.DashboardServiceConfig{
		HistoryLimit: cfg.Dashboard.HistoryLimit,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	})
	exportSvc := service.NewExportService(classRepo, studentRepo, entryRepo, entrySvc,
		export.NewCSVExporter(cfg.Export.CSVWithBOM), export.NewPDFExporter(cfg.Export.PDFFontPath), location, validate, logr)

	checks := map[string]handler.Pinger{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	registerRoutes(r, cfg.APIPrefix, routeDeps{
		tokens:    authSvc,
		audit:     auditRepo,
		logger:    logr,
		auth:      handler.NewAuthHandler(authSvc),
		entries:   handler.NewEntryHandler(entrySvc),
		dashboard: handler.NewDashboardHandler(dashboardSvc),
		export:    handler.NewExportHandler(exportSvc),
		holidays:  handler.NewHolidayHandler(holidaySvc),
		metrics:   handler.NewMetricsHandler(metricsSvc, checks, logr),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "timezone", location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
