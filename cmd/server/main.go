package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chat-gateway/internal/api/routes"
	"chat-gateway/internal/config"
	"chat-gateway/internal/database"
	"chat-gateway/internal/relay"
	"chat-gateway/internal/services"
	"chat-gateway/internal/websocket"

	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; env vars win over the file.
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting chat gateway")

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	userService := services.NewUserService(redisClient)
	sessionService := services.NewSessionService(redisClient, cfg.Session.TTL)

	registry := websocket.NewRegistry()
	router := websocket.NewRouter(registry)
	handler := websocket.NewHandler(router, userService, sessionService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := relay.New(ctx, redisClient.GetClient(), router, cfg.Relay)
	if err != nil {
		slog.Error("Failed to start change-feed relay", "error", err)
		os.Exit(1)
	}
	defer feed.Close()
	go feed.Run(ctx)

	apiRouter := routes.NewRouter(cfg, registry, handler, redisClient)
	apiRouter.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      apiRouter.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down")
	cancel()

	// Close every live connection; each teardown removes its own
	// registry entry.
	for _, c := range registry.SnapshotMatching(func(*websocket.Client) bool { return true }) {
		c.Close()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
