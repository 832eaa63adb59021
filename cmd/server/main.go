// Package main runs the ARC Beta lobby server: WebSocket session
// coordination plus the read-model HTTP surface, with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iamezell/arcbeta/config"
	"github.com/iamezell/arcbeta/internal/lobby"
	"github.com/iamezell/arcbeta/internal/middleware"
	"github.com/iamezell/arcbeta/internal/participants"
	"github.com/iamezell/arcbeta/internal/realtime"
	"github.com/iamezell/arcbeta/internal/rooms"
	"github.com/iamezell/arcbeta/pkg/database"
	"github.com/iamezell/arcbeta/pkg/redis"
	"github.com/iamezell/arcbeta/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	participantRepo := participants.NewRepository(pool)
	roomRepo := rooms.NewRepository(pool)

	// A participant row is only valid while its connection is open; drop
	// anything left over from a previous run.
	if err := participantRepo.Clear(ctx); err != nil {
		logger.Fatal("clear stale participants", zap.Error(err))
	}
	// The lobby room is well-known; make sure its record exists so status
	// reads reflect a real row rather than the default.
	if _, err := roomRepo.GetOrCreate(ctx, cfg.Lobby.RoomID); err != nil {
		logger.Fatal("ensure lobby room", zap.Error(err))
	}

	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	coordinator := lobby.NewCoordinator(participantRepo, roomRepo, hub, cfg.Lobby.RoomID, logger)
	lobbyHandler := lobby.NewHandler(participantRepo, roomRepo, cfg.Lobby.RoomID)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	lobbyGroup := router.Group("/lobby")
	{
		lobbyGroup.GET("/status", lobbyHandler.Status)
		lobbyGroup.GET("/user/:id", lobbyHandler.GetUser)
	}

	router.GET("/ws", realtime.ServeWs(hub, coordinator, logger))

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		// WriteTimeout does not apply to hijacked WebSocket connections.
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("lobby_room", cfg.Lobby.RoomID),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

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
