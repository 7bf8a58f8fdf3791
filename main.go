package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/flori92/floservice-messaging/internal/attachments"
	"github.com/flori92/floservice-messaging/internal/config"
	"github.com/flori92/floservice-messaging/internal/db"
	"github.com/flori92/floservice-messaging/internal/feed"
	"github.com/flori92/floservice-messaging/internal/handlers"
	"github.com/flori92/floservice-messaging/internal/identity"
	"github.com/flori92/floservice-messaging/internal/logging"
	"github.com/flori92/floservice-messaging/internal/middleware"
	"github.com/flori92/floservice-messaging/internal/objectstore"
	"github.com/flori92/floservice-messaging/internal/observability"
	"github.com/flori92/floservice-messaging/internal/presence"
	"github.com/flori92/floservice-messaging/internal/rabbitmq"
	"github.com/flori92/floservice-messaging/internal/repositories"
	"github.com/flori92/floservice-messaging/internal/session"
	"github.com/flori92/floservice-messaging/internal/telemetry"
	"github.com/flori92/floservice-messaging/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Environment)
	defer logger.Sync()

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		logger.Fatal("tracing setup failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	logger.Info("event publisher ready", zap.String("mode", rabbitmq.PublisherMode(publisher)))

	emitter := telemetry.NewAuditEmitter(publisher, "audit.messaging", "floservice-messaging", cfg.Environment, logger)

	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	profileRepo := repositories.NewProfileRepo(database)

	tracker := presence.NewTracker(redisClient, profileRepo, logger)
	messageFeed := feed.New()
	hub := ws.NewHub(logger)

	diskStore, err := objectstore.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		logger.Fatal("object store setup failed", zap.Error(err))
	}
	uploader := attachments.NewUploader(diskStore, logger)

	validator := identity.Validator{AllowSynthetic: cfg.AllowTestIdentifiers}
	verifier := middleware.NewVerifier(cfg.JWTSecret)

	sessionRegistry := session.NewRegistry(cfg.SessionSnapshotDir, tracker, messageRepo, messageFeed, cfg.RestoreSessionOnLoad, logger)
	defer sessionRegistry.Close()

	conversationHandler := handlers.NewConversationHandler(conversationRepo, validator, emitter, logger)
	messageHandler := handlers.NewMessageHandler(conversationRepo, messageRepo, hub, messageFeed, publisher, validator, logger)
	presenceHandler := handlers.NewPresenceHandler(tracker, validator, logger)
	uploadHandler := handlers.NewUploadHandler(uploader, logger)
	profileHandler := handlers.NewProfileHandler(profileRepo, logger)
	sessionHandler := handlers.NewSessionHandler(sessionRegistry, validator, logger)
	feedWS := ws.NewFeedHandler(hub, verifier)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("floservice-messaging"))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", diskStore.Root())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.GET("/conversations", authMiddleware, conversationHandler.List)
	router.POST("/conversations/start", authMiddleware, conversationHandler.Start)
	router.GET("/conversations/:conversation_id/messages", authMiddleware, messageHandler.List)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, messageHandler.Send)
	router.POST("/conversations/:conversation_id/read", authMiddleware, messageHandler.MarkRead)
	router.GET("/messages/unread-count", authMiddleware, messageHandler.UnreadCount)
	router.GET("/presence/:user_id", authMiddleware, presenceHandler.Get)
	router.POST("/uploads", authMiddleware, uploadHandler.Upload)
	router.POST("/profiles/sync", authMiddleware, profileHandler.Sync)
	router.GET("/profiles/:user_id", authMiddleware, profileHandler.Get)

	router.GET("/session/windows", authMiddleware, sessionHandler.Windows)
	router.POST("/session/windows/open", authMiddleware, sessionHandler.Open)
	router.DELETE("/session/windows/:counterpart_id", authMiddleware, sessionHandler.Close)
	router.POST("/session/windows/:counterpart_id/toggle", authMiddleware, sessionHandler.ToggleExpand)
	router.POST("/session/windows/minimize-all", authMiddleware, sessionHandler.MinimizeAll)

	router.GET("/ws/feed", feedWS.Handle)

	handlers.RegisterDebugRoutes(router, emitter, hub, messageFeed, cfg.DebugRoutes)

	logger.Info("listening", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
