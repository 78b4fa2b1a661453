package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/campushub/campus-api/internal/api"
	"github.com/campushub/campus-api/internal/auth"
	"github.com/campushub/campus-api/internal/cache"
	cfgpkg "github.com/campushub/campus-api/internal/config"
	"github.com/campushub/campus-api/internal/events"
	"github.com/campushub/campus-api/internal/kafka"
	"github.com/campushub/campus-api/internal/logger"
	"github.com/campushub/campus-api/internal/metrics"
	"github.com/campushub/campus-api/internal/push"
	"github.com/campushub/campus-api/internal/repository"
	"github.com/campushub/campus-api/internal/service"
	"github.com/campushub/campus-api/internal/ws"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := cfgpkg.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Mongo
	mc, err := repository.NewMongoClient(cfg.Mongo.URI)
	if err != nil {
		zlog.Fatalw("mongo init", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.Mongo.Database)

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Kafka
	kprod := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer kprod.Close()
	kcons := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.GroupID, zlog)
	defer kcons.Close()

	// Repositories
	convRepo := repository.NewConversationRepository(db.Collection("conversations"))
	msgRepo := repository.NewMessageRepository(db.Collection("messages"))
	blockRepo := repository.NewBlockRepository(db.Collection("blocks"))
	notifRepo := repository.NewNotificationRepository(db.Collection("notifications"))
	resvRepo := repository.NewReservationRepository(mc, db.Collection("reservations"))

	// Services
	notifSvc := service.NewNotificationService(notifRepo, zlog)
	publisher := events.NewPublisher(kprod, zlog)
	recent := cache.NewRecentMessages(rdb, zlog)
	convSvc := service.NewConversationService(convRepo, blockRepo, zlog)
	msgSvc := service.NewMessageService(msgRepo, convRepo, blockRepo, notifSvc, publisher, recent, zlog)
	blockSvc := service.NewBlockService(blockRepo)
	resvSvc := service.NewReservationService(resvRepo, zlog)

	// Auth
	verifier, err := auth.NewVerifier(cfg.JWT.PublicKeyPath, cfg.JWT.Secret)
	if err != nil {
		zlog.Fatalw("jwt init", "err", err)
	}

	// Real-time hub fed by the broker
	hub := ws.NewHub(zlog)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go kcons.Start(ctx, hub.HandleEvent)

	// Push dispatcher
	if cfg.Push.WebhookURL != "" {
		dispatcher := push.NewDispatcher(notifRepo, cfg.Push.WebhookURL, cfg.PushInterval, cfg.Push.BatchSize, zlog)
		go dispatcher.Run(ctx)
	}

	limiter := api.NewRateLimiter(rdb, "rl", cfg.RateLimit.Requests, cfg.RateLimitWindow)

	app := api.NewServer(api.Deps{
		Conversations: convSvc,
		Messages:      msgSvc,
		Notifications: notifSvc,
		Blocks:        blockSvc,
		Reservations:  resvSvc,
		Hub:           hub,
		Verifier:      verifier,
		RateLimiter:   limiter,
	})

	// metrics on its own listener
	metricsSrv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.App.MetricsPort),
		Handler: metrics.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Errorw("metrics listen", "err", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + strconv.Itoa(cfg.App.Port)); err != nil {
			zlog.Fatalw("server listen", "err", err)
		}
	}()
	zlog.Infow("campus-api started", "port", cfg.App.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = app.ShutdownWithContext(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	zlog.Info("campus-api stopped")
}
