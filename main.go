package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"groupchat-service/internal/auth"
	"groupchat-service/internal/chats"
	"groupchat-service/internal/config"
	"groupchat-service/internal/contacts"
	"groupchat-service/internal/db"
	grpcserver "groupchat-service/internal/grpc"
	"groupchat-service/internal/handlers"
	"groupchat-service/internal/kafka"
	"groupchat-service/internal/logging"
	"groupchat-service/internal/messaging"
	"groupchat-service/internal/middleware"
	"groupchat-service/internal/observability"
	"groupchat-service/internal/rabbitmq"
	"groupchat-service/internal/ratelimit"
	"groupchat-service/internal/repositories"
	"groupchat-service/internal/telemetry"
	"groupchat-service/internal/ws"
)

const auditRoutingKey = "audit.groupchat"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.ServiceName, cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.OTel.Endpoint, cfg.ServiceName, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	database, err := db.Connect(ctx, cfg.DB.DSN, logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
	defer publisher.Close()
	logger.Info("event publisher ready",
		zap.String("mode", rabbitmq.PublisherMode(publisher)),
		zap.String("noop_reason", rabbitmq.PublisherNoopReason(publisher)),
	)
	observability.SetPublisher(publisher)
	audit := telemetry.NewAuditEmitter(publisher, auditRoutingKey, cfg.ServiceName, cfg.Environment, logger)

	activity := kafka.NewActivityWriter(cfg.Kafka.BrokerList(), cfg.Kafka.Topic, logger)
	defer activity.Close()

	var limiter *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		limiter = ratelimit.New(rdb, cfg.RateLimit.Messages, cfg.RateLimit.Window)
		logger.Info("rate limiting enabled", zap.String("redis", cfg.Redis.Addr), zap.Int64("limit", cfg.RateLimit.Messages), zap.Duration("window", cfg.RateLimit.Window))
	}

	chatRepo := repositories.NewChatRepo(database)
	membershipRepo := repositories.NewMembershipRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	contactRepo := repositories.NewContactRepo(database)
	userRepo := repositories.NewUserRepo(database)

	chatService := chats.NewService(chatRepo, membershipRepo, userRepo, contactRepo, activity, logger)
	messageService := messaging.NewService(messageRepo, userRepo, chatService, activity, logger)
	contactService := contacts.NewService(contactRepo, userRepo)

	verifier := auth.NewVerifier(cfg.JWT.Secret)

	hub := ws.NewHub()
	wsRouter := ws.NewRouter(hub, messageService, limiter, audit, logger)
	chatWS := ws.NewChatWebSocketHandler(hub, wsRouter, chatService, verifier, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(cfg.ServiceName), middleware.RequestLogger(logger), observability.HTTPMetricsMiddleware())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/ws", chatWS.Handle)
	handlers.RegisterDebugRoutes(router, audit, hub, cfg.DebugRoutes)

	api := router.Group("/", middleware.AuthMiddleware(verifier))
	writes := limiter.WithPrefix("rl:writes:").Middleware(logger)
	handlers.NewChatHandler(chatService, messageService, audit, logger).Register(api, writes)
	handlers.NewContactHandler(contactService, audit, logger).Register(api, writes)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	health := grpcserver.NewHealthServer(database, logger)
	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	go health.Watch(ctx, 15*time.Second)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		logger.Info("grpc health listening", zap.String("addr", cfg.GRPCAddr))
		if err := health.Serve(grpcListener); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-errCh:
		logger.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("http shutdown", zap.Error(shutdownErr))
	}
	health.Stop()
	return err
}
