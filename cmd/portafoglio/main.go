package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"portafoglio/internal/amqp"
	"portafoglio/internal/config"
	"portafoglio/internal/core"
	apphttp "portafoglio/internal/http"
	"portafoglio/internal/ledger"
	applog "portafoglio/internal/log"
	"portafoglio/internal/service"
	"portafoglio/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	// Resume from the persisted wallet when one exists, otherwise start
	// fresh from the configured opening balance.
	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	balance, expenses, found, err := repo.Load(startCtx)
	startCancel()
	if err != nil {
		logger.Error("Failed to load persisted wallet", "error", err)
		os.Exit(1)
	}
	if !found {
		balance = core.Money{Cents: cfg.OpeningBalanceCents}
		expenses = nil
		logger.Info("No persisted wallet found, starting fresh", "opening_balance_cents", balance.Cents)
	} else {
		logger.Info("Resumed persisted wallet", "balance_cents", balance.Cents, "expenses", len(expenses))
	}

	book := ledger.NewBook(balance, expenses)

	// AMQP is optional: without it changes simply are not mirrored.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := service.NewLedgerService(book, repo, amqpClient)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Service close error", "error", err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, svc)

	// Graceful shutdown handling
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
			logger.Error("Server shutdown error", "error", err)
		}

		// Flush the in-memory wallet to disk before exiting
		if err := svc.Flush(shutdownCtx); err != nil {
			logger.Error("Final flush failed", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting portafoglio server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
