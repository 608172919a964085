package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Md905908324/NoSpendy/internal/amqp"
	"github.com/Md905908324/NoSpendy/internal/config"
	"github.com/Md905908324/NoSpendy/internal/log"
	"github.com/Md905908324/NoSpendy/internal/regions"
	"github.com/Md905908324/NoSpendy/internal/services"
	"github.com/Md905908324/NoSpendy/internal/storage"
	"github.com/Md905908324/NoSpendy/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logCfg := log.DefaultConfig()
	logCfg.Component = log.ComponentWorker
	logger := log.New(logCfg)
	log.SetDefault(logger)

	logger.Info("Starting nospendy-worker")

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

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	streakService := services.NewStreakService(repo)
	challengeService := services.NewChallengeService(repo, indexes)
	resetProcessor := services.NewResetProcessor(repo, cfg.RetentionDays)

	activityWorker := worker.NewActivityWorker(streakService, challengeService, resetProcessor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	activityWorker.StartMaintenanceLoops(ctx, cfg.ResetCheckInterval, cfg.ChallengeSweepInterval)

	go func() {
		err := amqpClient.ConsumeActivity(ctx, func(msg *amqp.ActivityMessage) error {
			return activityWorker.HandleActivityMessage(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}

	logger.Info("Worker stopped gracefully")
}
