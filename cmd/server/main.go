package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/studyhub/backend/internal/application/catalog"
	identityapp "github.com/studyhub/backend/internal/application/identity"
	libraryapp "github.com/studyhub/backend/internal/application/library"
	"github.com/studyhub/backend/internal/infrastructure/auth"
	"github.com/studyhub/backend/internal/infrastructure/config"
	"github.com/studyhub/backend/internal/infrastructure/logger"
	"github.com/studyhub/backend/internal/infrastructure/persistence"
	"github.com/studyhub/backend/internal/infrastructure/pyq"
	"github.com/studyhub/backend/internal/infrastructure/storage"
	"github.com/studyhub/backend/internal/infrastructure/telemetry"
	"github.com/studyhub/backend/internal/interfaces/http/handler"
	"github.com/studyhub/backend/internal/interfaces/http/middleware"
	"github.com/studyhub/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting StudyHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize telemetry providers (no-op when disabled)
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Ship application logs to the collector alongside traces and metrics
	if cfg.Telemetry.Enabled {
		logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Warn("Failed to initialize logs provider", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := logsProvider.Shutdown(shutdownCtx); err != nil {
					log.Error("Error shutting down logs provider", zap.Error(err))
				}
			}()
			otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
				ServiceName:    cfg.Telemetry.ServiceName,
				LoggerProvider: logsProvider,
				Level:          zapcore.InfoLevel,
			})
			log = telemetry.NewBridgedLogger(log.Core(), otelCore)
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register database query tracing when enabled
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Token blacklist: Redis when reachable, in-memory otherwise. The
	// in-memory fallback works for a single instance but revocations do
	// not survive a restart.
	var blacklist auth.TokenBlacklist
	if redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis); err != nil {
		log.Warn("Redis unavailable, falling back to in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
		log.Info("Redis token blacklist connected")
	}

	// Initialize repositories
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	subjectRepo := persistence.NewGormSubjectRepository(db.DB)
	fileRepo := persistence.NewGormFileRepository(db.DB)
	bookmarkRepo := persistence.NewGormBookmarkRepository(db.DB)
	collectionRepo := persistence.NewGormCollectionRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Object storage for uploads; the stub keeps the upload endpoints
	// functional in development when no bucket is configured
	var objectStorage catalogapp.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage initialized",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("No storage bucket configured, using stub object storage")
	}

	// Static question-paper index; absence just disables the merged results
	var staticIndex catalogapp.StaticIndex
	if cfg.PYQ.IndexPath != "" {
		idx, err := pyq.Load(cfg.PYQ.IndexPath)
		if err != nil {
			log.Warn("Failed to load question-paper index",
				zap.String("path", cfg.PYQ.IndexPath),
				zap.Error(err),
			)
		} else {
			staticIndex = idx
			log.Info("Question-paper index loaded",
				zap.String("path", cfg.PYQ.IndexPath),
				zap.Int("subjects", idx.SubjectCount()),
			)
		}
	}

	// Initialize application services
	branchService := catalogapp.NewBranchService(branchRepo)
	subjectService := catalogapp.NewSubjectService(subjectRepo, branchRepo)
	fileService := catalogapp.NewFileService(fileRepo, subjectRepo, branchRepo, objectStorage, staticIndex)
	fileService.SetConfig(catalogapp.FileServiceConfig{
		UploadURLExpiry: cfg.Storage.PresignExpiration,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
	})
	bookmarkService := libraryapp.NewBookmarkService(bookmarkRepo, fileRepo)
	collectionService := libraryapp.NewCollectionService(collectionRepo, fileRepo)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	googleProvider := auth.NewGoogleProvider(
		cfg.OAuth.GoogleClientID,
		cfg.OAuth.GoogleClientSecret,
		cfg.App.BaseURL+cfg.OAuth.CallbackPath,
		cfg.OAuth.HostedDomain,
	)
	authService := identityapp.NewAuthService(userRepo, googleProvider, jwtService, blacklist, cfg.Admin, log)

	// Content and database metrics (only when telemetry is on)
	if cfg.Telemetry.Enabled {
		contentMetrics, err := telemetry.NewContentMetrics(telemetry.ContentMetricsConfig{
			Meter:           meterProvider.Meter("studyhub.content"),
			Logger:          log,
			CatalogProvider: telemetry.NewGormCatalogMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize content metrics", zap.Error(err))
		} else {
			fileService.SetContentMetrics(contentMetrics)
			authService.SetContentMetrics(contentMetrics)
			contentMetrics.StartPeriodicCollection(ctx, 5*time.Minute)
			defer contentMetrics.Stop()
		}

		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("studyhub.db"), telemetry.DefaultDBMetricsConfig(), log)
		if err != nil {
			log.Warn("Failed to initialize database metrics", zap.Error(err))
		} else {
			if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
				log.Warn("Failed to register database metrics plugin", zap.Error(err))
			}
			if sqlDB, err := db.DB.DB(); err == nil {
				dbMetrics.SetSQLDB(sqlDB)
				dbMetrics.StartPoolStatsCollection(ctx)
				defer dbMetrics.Stop()
			}
		}
	}

	// Initialize HTTP handlers
	handlers := router.Handlers{
		System:     handler.NewSystemHandler(db),
		Branch:     handler.NewBranchHandler(branchService),
		Subject:    handler.NewSubjectHandler(subjectService),
		File:       handler.NewFileHandler(fileService),
		Auth:       handler.NewAuthHandler(authService, cfg.Cookie, cfg.App.FrontendURL, cfg.JWT.RefreshTokenExpiration),
		Bookmark:   handler.NewBookmarkHandler(bookmarkService),
		Collection: handler.NewCollectionHandler(collectionService),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Tracing/Metrics - Observability (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Tracing and HTTP metrics
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}

	// Route guards: session auth, admin role, auth endpoint throttling.
	// Sign-in endpoints get a tighter limiter than the global one since
	// the OAuth exchange is the most abuse-prone surface.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	uploadLimiter := middleware.NewRateLimiter(30, time.Minute)
	guards := router.Guards{
		Session: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		Admin:       middleware.RequireAdmin(),
		AuthLimiter: middleware.AuthRateLimit(authLimiter),
		UploadLimiter: middleware.RateLimitByKey(uploadLimiter, func(c *gin.Context) string {
			return "upload:" + middleware.GetJWTUserID(c)
		}),
	}

	// Mount the API surface
	router.Setup(engine, handlers, guards)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
