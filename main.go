package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"triviarelay/internal/config"
	"triviarelay/internal/http/http_server"
	"triviarelay/internal/redis/redis_client"
	"triviarelay/internal/redis/watcher/leasewatcher"
	"triviarelay/internal/services/session"
	"triviarelay/internal/store"
	"triviarelay/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis
	redisClient, err := redis_client.NewRedisClient(cfg.RedisHost, cfg.RedisPort)
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Coordination core: store + session service
	roomStore := store.NewRedisStore(redisClient)
	sessionSvc := session.NewSessionService(roomStore, clockwork.NewRealClock(), session.Options{
		Passkey:            cfg.AppPasskey,
		RoomTTL:            cfg.RoomTTL,
		StaleThreshold:     cfg.StaleThreshold,
		HeartbeatInterval:  cfg.HeartbeatInterval,
		StateTouchInterval: cfg.StateTouchInterval,
		CodeAttempts:       cfg.RoomCodeAttempts,
	})

	// 5. WebSockets hub + server (push-relay transport)
	hub := ws.NewHub()
	wsSrv := ws.NewWsServer(hub, sessionSvc)

	// 6. Background: lease-expiry watcher ➜ push controller_lost
	go leasewatcher.Run(ctx, redisClient, hub)

	// 7. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, sessionSvc)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
