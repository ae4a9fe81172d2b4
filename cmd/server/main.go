package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	reviewapp "github.com/kpiboard/backend/internal/application/review"
	scorecardapp "github.com/kpiboard/backend/internal/application/scorecard"
	"github.com/kpiboard/backend/internal/domain/shared"
	"github.com/kpiboard/backend/internal/infrastructure/config"
	"github.com/kpiboard/backend/internal/infrastructure/event"
	"github.com/kpiboard/backend/internal/infrastructure/logger"
	"github.com/kpiboard/backend/internal/infrastructure/notification"
	"github.com/kpiboard/backend/internal/infrastructure/persistence"
	"github.com/kpiboard/backend/internal/infrastructure/telemetry"
	"github.com/kpiboard/backend/internal/interfaces/http/handler"
	"github.com/kpiboard/backend/internal/interfaces/http/middleware"
	"github.com/kpiboard/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//	@title			KPI Board Backend API
//	@version		1.0
//	@description	KPI dashboard backend: fact-change approval workflow and status evaluation

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting KPI Board Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:  gormLog,
		Tracing: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := persistence.AutoMigrate(db.DB); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Repositories
	factRepo := persistence.NewGormFactRepository(db.DB)
	changeRepo := persistence.NewGormFactChangeRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	planRepo := persistence.NewGormPlanRepository(db.DB)
	periodRepo := persistence.NewGormPeriodRepository(db.DB)
	auditRepo := persistence.NewGormAuditRecorder(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	locker := persistence.NewAdvisoryPlanYearLocker(db.DB)

	// Event bus and notification pipeline
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	var dedup shared.IdempotencyStore
	if cfg.Redis.Enabled {
		store, err := notification.NewRedisIdempotencyStore(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		dedup = store
		log.Info("Notification dedup backed by Redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		dedup = notification.NewInMemoryIdempotencyStore()
	}
	defer func() {
		if err := dedup.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	notifier := notification.NewLogNotifier(log)
	dispatcher := notification.NewDispatcher(notifier, dedup, log)
	eventBus.Subscribe(dispatcher)

	// Application services
	recomputeService := scorecardapp.NewRecomputeService(
		factRepo, planRepo, periodRepo, locker,
		scorecardapp.RecomputeConfig{
			GraceInterval: cfg.Workflow.GraceInterval,
			Tolerance:     decimal.NewFromFloat(cfg.Workflow.StatusTolerance),
		},
	)
	ledgerService := reviewapp.NewChangeLedgerService(
		txScope, changeRepo, factRepo, planRepo,
		recomputeService, eventBus, log,
		reviewapp.LedgerConfig{TargetEditEnabled: cfg.Workflow.TargetEditEnabled},
	)
	batchService := reviewapp.NewBatchService(
		batchRepo, changeRepo, planRepo,
		ledgerService, auditRepo, eventBus, log,
	)
	queryService := scorecardapp.NewFactQueryService(factRepo, periodRepo, auditRepo)

	// Handlers
	changeHandler := handler.NewChangeHandler(ledgerService)
	batchHandler := handler.NewBatchHandler(batchService)
	factHandler := handler.NewFactHandler(queryService, recomputeService)
	systemHandler := handler.NewSystemHandler()

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.GET("/health", healthHandler(db))

	// Routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	reviewRoutes := router.NewDomainGroup("review", "/review")
	reviewRoutes.POST("/changes", changeHandler.Submit)
	reviewRoutes.POST("/changes/:id/approve", changeHandler.Approve)
	reviewRoutes.POST("/changes/:id/reject", changeHandler.Reject)
	reviewRoutes.GET("/facts/:fact_id/change-state", changeHandler.GetState)
	reviewRoutes.GET("/facts/:fact_id/pending", changeHandler.HasPending)
	reviewRoutes.POST("/batches", batchHandler.Create)
	reviewRoutes.GET("/batches/pending", batchHandler.ListPending)
	reviewRoutes.GET("/batches/:id", batchHandler.GetByID)
	reviewRoutes.POST("/batches/:id/approve", batchHandler.Approve)
	reviewRoutes.POST("/batches/:id/reject", batchHandler.Reject)

	scorecardRoutes := router.NewDomainGroup("scorecard", "/scorecard")
	scorecardRoutes.GET("/facts/:id", factHandler.GetByID)
	scorecardRoutes.GET("/facts/:id/history", factHandler.GetHistory)
	scorecardRoutes.GET("/plans/:plan_id/years/:year/facts", factHandler.ListPlanYear)
	scorecardRoutes.POST("/plans/:plan_id/years/:year/recompute", factHandler.Recompute)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(reviewRoutes).
		Register(scorecardRoutes).
		Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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

// healthHandler reports liveness and database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
