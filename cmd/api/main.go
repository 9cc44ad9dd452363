package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sgazz/SuperMoment/internal/clock"
	"github.com/sgazz/SuperMoment/internal/config"
	"github.com/sgazz/SuperMoment/internal/connect"
	"github.com/sgazz/SuperMoment/internal/container"
	"github.com/sgazz/SuperMoment/internal/helpers"
	"github.com/sgazz/SuperMoment/internal/models"
	"github.com/sgazz/SuperMoment/internal/routes"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting SuperMoment API server", "environment", cfg.Environment, "storage", cfg.Storage.Driver)

	store, mongoClient, err := setupStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	verifier, err := helpers.NewTokenVerifier(ctx, cfg.Auth.JWTSecret, cfg.Auth.JWKSURL, logger)
	if err != nil {
		logger.Error("Failed to initialize token verifier", "error", err)
		os.Exit(1)
	}

	appContainer := container.NewContainer(cfg, logger, store, verifier, clock.NewSystem())
	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	verifier.Close()
	if err := connect.MongoDBDisconnect(mongoClient); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (container.Store, *mongo.Client, error) {
	if cfg.Storage.Driver != config.StorageMongo {
		logger.Warn("Using in-memory storage; data is lost on restart")
		return models.NewMemoryRepo(), nil, nil
	}

	client, err := connect.MongoDBConnect(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Connected to MongoDB successfully", "database", cfg.Storage.MongoDatabase)

	repo := models.MongodbNewRepo(client, cfg.Storage.MongoDatabase)
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = connect.MongoDBDisconnect(client)
		return nil, nil, err
	}
	return repo, client, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}
