// Package main runs the event registration and check-in HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventflow/backend/config"
	"github.com/eventflow/backend/internal/auth"
	"github.com/eventflow/backend/internal/checkin"
	"github.com/eventflow/backend/internal/events"
	"github.com/eventflow/backend/internal/export"
	"github.com/eventflow/backend/internal/middleware"
	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/internal/passes"
	"github.com/eventflow/backend/internal/realtime"
	"github.com/eventflow/backend/internal/registrations"
	"github.com/eventflow/backend/internal/stats"
	"github.com/eventflow/backend/internal/store"
	"github.com/eventflow/backend/internal/worker"
	"github.com/eventflow/backend/pkg/queue"
	"github.com/eventflow/backend/pkg/redis"
	"github.com/eventflow/backend/pkg/response"
	"github.com/eventflow/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	var st store.Store
	if rdb != nil {
		st, err = store.Open(ctx, cfg, rdb.Client, logger)
	} else {
		st, err = store.Open(ctx, cfg, nil, logger)
	}
	if err != nil {
		logger.Fatal("store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.Close()

	// Events
	catalog := events.NewCatalog(st)
	if cfg.Store.SeedExampleData {
		n, err := catalog.Seed(ctx)
		if err != nil {
			logger.Fatal("seed events", zap.Error(err))
		}
		logger.Info("example events seeded", zap.Int("count", n))
	}
	eventHandler := events.NewHandler(catalog, logger)

	// Identity
	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if rdb != nil {
		revoker = auth.NewRedisRevoker(rdb.Client)
	}
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	authService := auth.NewService(auth.NewRepository(st), jwtService, revoker, cfg.Auth.AdminEmails)
	authHandler := auth.NewHandler(authService, logger)
	stopSessionLog := authService.OnSessionChange(func(u *models.UserPublic) {
		if u == nil {
			logger.Info("session ended")
			return
		}
		logger.Info("session started", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	})
	defer stopSessionLog()

	// Realtime feed
	var hub *realtime.Hub
	if rdb != nil {
		bridge := realtime.NewRedisPubSub(rdb.Client, logger)
		hub = realtime.NewHub(logger, bridge, bridge)
	} else {
		hub = realtime.NewHub(logger, nil, nil)
	}
	aggregator := stats.NewAggregator(st)
	notifier := realtime.NewNotifier(hub, aggregator, logger)

	// Registrations and entry passes
	var passQueue registrations.PassQueue
	var jobQueue *queue.Queue
	if cfg.Queue.PassDeliveryEnabled {
		jobQueue = queue.NewQueue(rdb.Client, logger)
		passQueue = jobQueue
	}
	registrationEngine := registrations.NewEngine(st)
	registrationHandler := registrations.NewHandler(registrationEngine, catalog, passQueue, notifier, logger)

	checkinEngine := checkin.NewEngine(st)
	checkinHandler := checkin.NewHandler(checkinEngine, catalog, notifier, logger)
	passHandler := passes.NewHandler(checkinEngine, logger)

	statsHandler := stats.NewHandler(aggregator, catalog, logger)
	exportHandler := export.NewHandler(catalog, registrationEngine, logger)

	// Pass archiving runs in-process when the queue is on and S3 is configured
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if jobQueue != nil && cfg.AWS.Region != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			PassesBucket:    cfg.AWS.PassesBucket,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled, pass archiving off", zap.Error(err))
		} else {
			archiver := passes.NewArchiver(s3Client, s3Client.PassesBucket())
			go worker.NewPassProcessor(checkinEngine, archiver, jobQueue, logger).Run(workerCtx)
			logger.Info("pass worker started")
		}
	}

	checkinLimiter := middleware.NewRateLimiter(middleware.LimiterConfig{
		RPS:   cfg.RateLimit.CheckInRPS,
		Burst: cfg.RateLimit.CheckInBurst,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/signin", authHandler.SignIn)
		authGroup.POST("/signout", authHandler.SignOut)
		authGroup.GET("/session", authHandler.Session)
	}

	// Public: browse events, register, fetch own pass
	router.GET("/events", eventHandler.List)
	router.GET("/events/:id", eventHandler.GetByID)
	router.POST("/events/:id/register", registrationHandler.Register)
	router.GET("/passes/:token", checkinLimiter.Middleware(middleware.ByClientIP), passHandler.Image)

	// Protected API (session required)
	api := router.Group("")
	api.Use(middleware.JWT(authService))
	{
		admin := middleware.RequireRole(models.RoleAdmin)
		door := middleware.RequireRole(models.RoleAdmin, models.RoleStaff)

		// Users
		api.GET("/auth/users", admin, authHandler.ListUsers)
		api.PATCH("/auth/users/:id/role", admin, authHandler.SetRole)

		// Events
		api.POST("/events", admin, eventHandler.Create)
		api.PATCH("/events/:id", admin, eventHandler.Update)
		api.DELETE("/events/:id", admin, eventHandler.Delete)
		api.GET("/events/:id/participants", door, registrationHandler.ListByEvent)
		api.GET("/events/:id/export.xlsx", door, exportHandler.Participants)

		// Stats
		api.GET("/events/:id/stats", door, statsHandler.ByEvent)
		api.GET("/stats", door, statsHandler.All)

		// Check-in
		limited := checkinLimiter.Middleware(middleware.ByClientIP)
		api.GET("/checkin/:token", door, limited, checkinHandler.Lookup)
		api.POST("/checkin/:token", door, limited, checkinHandler.CheckIn)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, authService.Role, notifier.Snapshot))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
