package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pburman754/Project-ChatApp/internal/api"
	"github.com/pburman754/Project-ChatApp/internal/auth"
	"github.com/pburman754/Project-ChatApp/internal/config"
	"github.com/pburman754/Project-ChatApp/internal/events"
	"github.com/pburman754/Project-ChatApp/internal/logger"
	"github.com/pburman754/Project-ChatApp/internal/presence"
	redisstore "github.com/pburman754/Project-ChatApp/internal/redis"
	"github.com/pburman754/Project-ChatApp/internal/repository"
	"github.com/pburman754/Project-ChatApp/internal/router"
	"github.com/pburman754/Project-ChatApp/internal/service"
	"github.com/pburman754/Project-ChatApp/internal/status"
	"github.com/pburman754/Project-ChatApp/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(cfg.App.Env != "production")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	var store repository.MessageStore
	var ids repository.IdentityStore
	if cfg.Mongo.URI != "" {
		mc, err := repository.NewMongoClient(context.Background(), cfg.Mongo.URI)
		if err != nil {
			zl.Fatalw("mongo init", "err", err)
		}
		defer func() { _ = mc.Disconnect(context.Background()) }()
		db := mc.Database(cfg.Mongo.DB)
		store = repository.NewMongoMessages(db.Collection("chats"))
		ids = repository.NewMongoIdentities(db.Collection("users"))
	} else {
		zl.Warnw("mongo.uri not set, running on the in-memory store")
		mem := repository.NewMemory()
		store, ids = mem, mem
	}

	var mirror *redisstore.Store
	if cfg.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		mirror = redisstore.NewStore(rdb, cfg.Redis.Prefix)
	}

	var feed *events.Feed
	if len(cfg.Kafka.Brokers) > 0 {
		feed = events.NewFeed(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = feed.Close() }()
	}

	registry := presence.NewRegistry()
	rt := router.New(registry, zl)
	tracker := status.NewTracker(store, rt, zl)
	svc := service.NewChatService(store, ids, rt, feed, zl)

	var jv *auth.Validator
	if cfg.JWT.Secret != "" {
		jv = auth.NewValidator(cfg.JWT.Secret)
	}

	wsh := ws.NewHandler(registry, rt, svc, tracker, mirror, ws.Config{
		PingInterval:  cfg.PingInterval,
		WriteDeadline: cfg.WriteDeadline,
		MaxMsgSize:    cfg.WS.MaxMessageSizeBytes,
	}, zl)

	app := api.NewServer(svc, wsh, jv)

	go func() {
		addr := ":" + cfg.App.PortString()
		zl.Infow("chat server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			zl.Fatalw("server listen", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	zl.Infow("chat server stopped")
}
