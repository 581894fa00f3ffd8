package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	dbfs "github.com/garnizeh/helpermatch/db"
	"github.com/garnizeh/helpermatch/api"
	"github.com/garnizeh/helpermatch/internal/config"
	"github.com/garnizeh/helpermatch/internal/db"
	"github.com/garnizeh/helpermatch/internal/logger"
	"github.com/garnizeh/helpermatch/internal/otp"
	"github.com/garnizeh/helpermatch/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	lg := logger.InitFromConfig(cfg)
	api.SetLogger(lg)
	lg.Info("starting helpermatch server", "version", version, "build_time", buildTime, "env", cfg.Env)

	ctx := context.Background()

	// Open database connection
	database, err := db.New(ctx, cfg.DatabasePath, lg)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
			log.Fatalf("Failed to migrate DB: %v", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// OTP requests fail until redis is reachable; the rest of the API works.
		lg.Warn("redis unreachable", "addr", cfg.Redis.Addr, "err", err)
	}

	var sender otp.Sender = otp.LogSender{Logger: lg}
	if cfg.Twilio.AccountSID != "" {
		sender = otp.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From)
	}

	store, err := storage.New(cfg.Storage.Root, cfg.Storage.PublicBaseURL)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	handler := api.SetupRoutes(cfg, version, buildTime, api.Backends{
		DB:     database,
		Store:  store,
		Redis:  rdb,
		Sender: sender,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		lg.Info("server listening", "addr", cfg.Addr, "sms_provider", sender.Name())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := rdb.Close(); err != nil {
		lg.Error("close redis", "err", err)
	}
	// Close database connection
	if err := database.Close(); err != nil {
		lg.Error("close DB", "err", err)
	}

	lg.Info("server exited")
}
