package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Md905908324/NoSpendy/internal/amqp"
	"github.com/Md905908324/NoSpendy/internal/auth"
	"github.com/Md905908324/NoSpendy/internal/config"
	apphttp "github.com/Md905908324/NoSpendy/internal/http"
	"github.com/Md905908324/NoSpendy/internal/log"
	"github.com/Md905908324/NoSpendy/internal/regions"
	"github.com/Md905908324/NoSpendy/internal/services"
	"github.com/Md905908324/NoSpendy/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting nospendy server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	indexes, err := regions.LoadFile(cfg.CostOfLivingCSV)
	if err != nil {
		logger.Error("Failed to load cost-of-living table", log.FieldError, err, "path", cfg.CostOfLivingCSV)
		os.Exit(1)
	}
	logger.Info("Cost-of-living table loaded", "regions", indexes.Len())

	// The server still works without AMQP; streak updates then wait for the
	// worker to catch up from later activity.
	var publisher services.ActivityPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, activity events disabled", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	authManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	userService := services.NewUserService(repo, authManager, publisher)
	expenseService := services.NewExpenseService(repo, publisher)
	challengeService := services.NewChallengeService(repo, indexes)
	leaderboardService := services.NewLeaderboardService(repo, indexes, cfg.LeaderboardLimit, cfg.IncludeZeroSpend)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Users:        userService,
		Expenses:     expenseService,
		Challenges:   challengeService,
		Leaderboards: leaderboardService,
		Auth:         authManager,
		DB:           repo,
		Logger:       logger,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting HTTP server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
