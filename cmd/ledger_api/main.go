package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowi-ledger/internal/bootstrap"
	"github.com/flowi-ledger/internal/config"
	"github.com/flowi-ledger/internal/ledger_api"
	"github.com/flowi-ledger/internal/ledger_api/consumer"
	"github.com/flowi-ledger/internal/logger"
	"github.com/flowi-ledger/internal/platform/messaging/consumers"
	"github.com/flowi-ledger/internal/platform/messaging/producers"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("ledger_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Stores, producers, rate manager and services
	app, err := bootstrap.Build(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize ledger", "error", err)
		os.Exit(1)
	}

	// Initialize REST server
	server := ledger_api.NewServer(log, cfg, ledger_api.Services{
		Rates:       app.Rates,
		Obligations: app.Obligations,
		Dashboard:   app.Dashboard,
	}, app.HealthChecks()...)
	log.Info("REST server initialized")

	// Create error channel for server and consumer errors
	errChan := make(chan error, 2)

	// Rate feed consumer is opt-in
	var kafkaConsumer *consumers.KafkaConsumer
	if cfg.Kafka.Enabled {
		kafkaConsumer = consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)
		var dlq producers.DeadLetterPublisher
		if app.DLQ != nil {
			dlq = app.DLQ
		}
		rateHandler := consumer.NewRateEventHandler(log, app.Rates, dlq)

		log.Info("Starting rate feed consumer",
			"topic", cfg.Kafka.RateTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.RateTopic, cfg.Kafka.ConsumerGroup, rateHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var runErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Runtime error occurred", "error", err)
		runErr = err
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence: server, consumer, then producers and stores
	log.Info("Starting graceful shutdown...")

	var shutdownFailed bool
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownFailed = true
	}

	cancelAppCtx()
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			log.Error("Error closing Kafka consumer", "error", err)
			shutdownFailed = true
		}
	}

	if err := app.Close(shutdownCtx); err != nil {
		shutdownFailed = true
	}

	// Final status
	if runErr != nil || shutdownFailed {
		log.Error("Ledger API shutdown completed with errors", "error", runErr)
		cancelShutdown()
		os.Exit(1)
	}
	log.Info("Ledger API shutdown completed successfully")
}
