package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/unifyd/backend/internal/application/ingest"
	"github.com/unifyd/backend/internal/application/sync"
	"github.com/unifyd/backend/internal/application/unification"
	"github.com/unifyd/backend/internal/domain/unified"
	"github.com/unifyd/backend/internal/infrastructure/config"
	"github.com/unifyd/backend/internal/infrastructure/lock"
	"github.com/unifyd/backend/internal/infrastructure/logger"
	"github.com/unifyd/backend/internal/infrastructure/persistence"
	"github.com/unifyd/backend/internal/infrastructure/providers/front"
	"github.com/unifyd/backend/internal/infrastructure/providers/hubspot"
	"github.com/unifyd/backend/internal/infrastructure/scheduler"
	"github.com/unifyd/backend/internal/interfaces/http/handler"
	"github.com/unifyd/backend/internal/interfaces/http/middleware"
	"github.com/unifyd/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Unifyd Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	linkedAccountRepo := persistence.NewGormLinkedAccountRepository(db.DB)
	connectionRepo := persistence.NewGormConnectionRepository(db.DB)
	extensionStore := persistence.NewGormExtensionStore(db.DB)
	rawPayloadStore := persistence.NewGormRawPayloadStore(db.DB)
	remoteIDResolver := persistence.NewGormRemoteIDResolver(db.DB)

	// Record writers, one per object type
	writers := []unified.RecordWriter{
		persistence.NewGormContactWriter(db.DB),
		persistence.NewGormTicketWriter(db.DB),
		persistence.NewGormTagWriter(db.DB),
		persistence.NewGormUserWriter(db.DB),
		persistence.NewGormTrackingCategoryWriter(db.DB),
	}

	// Mapper and fetch service registries; provider packages self-register
	registry := unified.NewRegistry()
	services := unified.NewServiceRegistry()

	front.RegisterTicketMapper(registry, remoteIDResolver, log)
	front.RegisterTagMapper(registry)
	front.RegisterTeammateMapper(registry)
	hubspot.RegisterContactMapper(registry, remoteIDResolver, log)
	hubspot.RegisterOwnerMapper(registry)

	frontClient, err := front.NewClient(&front.Config{
		BaseURL:        cfg.Providers.Front.BaseURL,
		APIToken:       cfg.Providers.Front.APIToken,
		TimeoutSeconds: cfg.Providers.Front.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to create Front client", zap.Error(err))
	}
	front.RegisterTicketFetchService(services, frontClient)
	front.RegisterTagFetchService(services, frontClient)
	front.RegisterTeammateFetchService(services, frontClient)

	hubspotClient, err := hubspot.NewClient(&hubspot.Config{
		BaseURL:        cfg.Providers.HubSpot.BaseURL,
		AccessToken:    cfg.Providers.HubSpot.AccessToken,
		TimeoutSeconds: cfg.Providers.HubSpot.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to create HubSpot client", zap.Error(err))
	}
	hubspot.RegisterContactFetchService(services, hubspotClient)
	hubspot.RegisterOwnerFetchService(services, hubspotClient)

	// Record locker: striped in-process mutexes, or Redis for multi-instance
	// deployments
	var locker ingest.KeyLocker
	switch cfg.Lock.Backend {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = redisClient.Close()
		}()
		locker = lock.NewRedisLocker(redisClient, lock.RedisLockerConfig{
			KeyPrefix:      cfg.Lock.KeyPrefix,
			TTL:            cfg.Lock.TTL,
			AcquireTimeout: cfg.Lock.AcquireTimeout,
			RetryInterval:  cfg.Lock.RetryInterval,
		}, log)
		log.Info("Using Redis record locker", zap.String("addr", redisClient.Options().Addr))
	default:
		locker = lock.NewMemoryLocker()
	}

	// Application services
	core := unification.NewCoreUnification(registry, extensionStore, log)

	ingestService, err := ingest.NewService(writers, connectionRepo, extensionStore, rawPayloadStore, locker, log)
	if err != nil {
		log.Fatal("Failed to create ingest service", zap.Error(err))
	}

	orchestrator := sync.NewOrchestrator(
		tenantRepo,
		projectRepo,
		linkedAccountRepo,
		connectionRepo,
		extensionStore,
		services,
		core,
		ingestService,
		cfg.Sync.MaxConcurrentConnections,
		log,
	)

	// Background sync jobs, one per (vertical, object type). Reference data
	// syncs on the same cadence as the records that link to it.
	targets := []sync.Target{
		{Vertical: unified.VerticalTicketing, ObjectType: unified.ObjectTypeUser, Providers: []string{front.Slug}, Every: cfg.Sync.TicketingInterval},
		{Vertical: unified.VerticalTicketing, ObjectType: unified.ObjectTypeTag, Providers: []string{front.Slug}, Every: cfg.Sync.TicketingInterval},
		{Vertical: unified.VerticalTicketing, ObjectType: unified.ObjectTypeTicket, Providers: []string{front.Slug}, Every: cfg.Sync.TicketingInterval},
		{Vertical: unified.VerticalCRM, ObjectType: unified.ObjectTypeUser, Providers: []string{hubspot.Slug}, Every: cfg.Sync.CRMInterval},
		{Vertical: unified.VerticalCRM, ObjectType: unified.ObjectTypeContact, Providers: []string{hubspot.Slug}, Every: cfg.Sync.CRMInterval},
	}

	sched := scheduler.NewScheduler(scheduler.Config{
		CheckInterval: cfg.Scheduler.CheckInterval,
		JobTimeout:    cfg.Scheduler.JobTimeout,
		HistorySize:   cfg.Scheduler.HistorySize,
	}, log)

	for _, target := range targets {
		target := target
		jobName := fmt.Sprintf("sync-%s-%s", target.Vertical, target.ObjectType)
		err := sched.RegisterJob(jobName, target.Every, func(ctx context.Context) error {
			summary, err := orchestrator.SyncAll(ctx, target)
			log.Info("Sync run finished",
				zap.String("job", jobName),
				zap.Int("connections", summary.Connections),
				zap.Int("succeeded", summary.Succeeded),
				zap.Int("skipped", summary.Skipped),
				zap.Int("failed", summary.Failed),
				zap.Int("records", summary.Records),
			)
			return err
		})
		if err != nil {
			log.Fatal("Failed to register sync job", zap.String("job", jobName), zap.Error(err))
		}
	}

	if cfg.Scheduler.Enabled {
		if err := sched.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		log.Info("Scheduler started", zap.Int("jobs", len(targets)))
	} else {
		log.Info("Scheduler disabled, sync jobs run only via the API")
	}

	// Setup gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSystemHandler(db)).
		Register(handler.NewSyncHandler(sched, tenantRepo, orchestrator, targets)).
		Register(handler.NewDirectoryHandler(linkedAccountRepo, connectionRepo))
	r.Setup()

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := sched.Stop(ctx); err != nil {
		log.Error("Scheduler stop timed out", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
