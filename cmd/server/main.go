// Package main runs the workshop backend HTTP server with live Q&A WebSocket and graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/workshop-hub/backend/config"
	"github.com/workshop-hub/backend/internal/analytics"
	"github.com/workshop-hub/backend/internal/auth"
	"github.com/workshop-hub/backend/internal/comments"
	"github.com/workshop-hub/backend/internal/feedback"
	"github.com/workshop-hub/backend/internal/materials"
	"github.com/workshop-hub/backend/internal/middleware"
	"github.com/workshop-hub/backend/internal/notifications"
	"github.com/workshop-hub/backend/internal/participants"
	"github.com/workshop-hub/backend/internal/qa"
	"github.com/workshop-hub/backend/internal/realtime"
	"github.com/workshop-hub/backend/internal/registrations"
	"github.com/workshop-hub/backend/internal/trainers"
	"github.com/workshop-hub/backend/internal/worker"
	"github.com/workshop-hub/backend/internal/workshops"
	"github.com/workshop-hub/backend/pkg/database"
	"github.com/workshop-hub/backend/pkg/queue"
	"github.com/workshop-hub/backend/pkg/redis"
	"github.com/workshop-hub/backend/pkg/response"
	"github.com/workshop-hub/backend/pkg/storage"
	"github.com/workshop-hub/backend/pkg/validator"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	loc, err := cfg.App.Location()
	if err != nil {
		logger.Warn("timezone fallback to UTC", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns: int32(cfg.Database.MaxConns),
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var objects materials.ObjectStore
	if cfg.AWS.S3Enabled() {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			MaterialsBucket:      cfg.AWS.MaterialsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
			MaxUploadBytes:       cfg.AWS.MaxUploadBytes(),
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled, materials accept links only", zap.Error(err))
		} else {
			objects = s3Client
		}
	}

	if err := validator.Register(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, pubsub, pubsub)

	// Notifications (templates + queued fan-out)
	notificationRepo := notifications.NewRepository(pool)
	notificationSvc := notifications.NewService(notificationRepo, jobQueue, logger)
	notificationHandler := notifications.NewHandler(notificationSvc, logger)

	// Workshops & sessions
	workshopRepo := workshops.NewRepository(pool)
	workshopSvc := workshops.NewService(workshopRepo, notificationSvc, cfg.App.FrontendBaseURL, logger)
	workshopHandler := workshops.NewHandler(workshopSvc, logger)

	// Participants, types and participant accounts
	participantRepo := participants.NewRepository(pool)
	participantSvc := participants.NewService(participantRepo, workshopRepo, jwtService, loc, logger)
	participantHandler := participants.NewHandler(participantSvc, logger)

	// Trainers, credentials and session assignments
	trainerRepo := trainers.NewRepository(pool)
	trainerSvc := trainers.NewService(trainerRepo, workshopRepo, jwtService, logger)
	trainerHandler := trainers.NewHandler(trainerSvc, logger)

	// Registrations & attendance
	registrationRepo := registrations.NewRepository(pool)
	registrationSvc := registrations.NewService(registrationRepo, workshopRepo, workshopSvc, participantRepo, logger)
	registrationHandler := registrations.NewHandler(registrationSvc, logger)

	// Feedback questions & responses
	feedbackRepo := feedback.NewRepository(pool)
	feedbackSvc := feedback.NewService(feedbackRepo, workshopRepo, participantRepo, notificationSvc, logger)
	feedbackHandler := feedback.NewHandler(feedbackSvc, logger)

	// Q&A (broadcast through the live hub)
	qaRepo := qa.NewRepository(pool)
	qaSvc := qa.NewService(qaRepo, workshopRepo, participantRepo, hub, logger)
	qaHandler := qa.NewHandler(qaSvc, logger)

	// Admin comments
	commentRepo := comments.NewRepository(pool)
	commentHandler := comments.NewHandler(comments.NewService(commentRepo, workshopRepo, logger), logger)

	// Session materials (links or S3 objects)
	materialRepo := materials.NewRepository(pool)
	materialSvc := materials.NewService(materialRepo, workshopRepo, objects, notificationSvc, logger)
	materialHandler := materials.NewHandler(materialSvc, logger)

	// Analytics
	analyticsRepo := analytics.NewRepository(pool)
	analyticsHandler := analytics.NewHandler(analytics.NewService(analyticsRepo, loc, logger), logger)

	requireJWT := middleware.JWT(jwtService)
	trainerOnly := []gin.HandlerFunc{requireJWT, middleware.RequireRole(auth.RoleTrainer)}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		redisOK := rdb.Healthy(c.Request.Context())
		dbOK := pool.Ping(c.Request.Context()) == nil
		if !redisOK || !dbOK {
			status = http.StatusServiceUnavailable
		}
		response.WithStatus(c, status, gin.H{"database": dbOK, "redis": redisOK})
	})

	workshopHandler.RegisterWorkshops(router.Group("/workshops"))
	workshopHandler.RegisterSessions(router.Group("/sessions"))

	participantGroup := router.Group("/participants")
	participantHandler.RegisterParticipants(participantGroup)
	participantGroup.POST("/:id/register-session", registrationHandler.RegisterOnBehalf)
	participantHandler.RegisterTypes(router.Group("/participant-types"))
	participantHandler.RegisterAccounts(router.Group("/accounts"), requireJWT)

	trainerHandler.Register(router.Group("/trainers"))
	registrationHandler.Register(router.Group("/registrations"))

	feedbackGroup := router.Group("/feedback")
	feedbackHandler.Register(feedbackGroup)
	feedbackGroup.GET("/analysis/:session_id", analyticsHandler.FeedbackAnalysis)

	qaHandler.Register(router.Group("/questions"))
	commentHandler.Register(router.Group("/comments"))
	materialHandler.Register(router.Group("/materials"))
	notificationHandler.Register(router.Group("/notifications"))
	analyticsHandler.Register(router.Group("/analytics"), trainerOnly...)

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws/sessions/:id/questions", realtime.ServeWs(hub, jwtService, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workerDone := make(chan struct{})
	if cfg.Worker.Inline {
		processor := worker.NewNotificationProcessor(notificationRepo, jobQueue, logger)
		go func() {
			defer close(workerDone)
			processor.Run(workerCtx)
		}()
		logger.Info("notification worker started in-process")
	} else {
		close(workerDone)
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	workerCancel()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Warn("notification worker did not stop in time")
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
