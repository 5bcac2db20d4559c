// Package main is the entry point of the attendance service.
//
// The service owns per-lesson attendance records: it exposes a REST API for
// the lifecycle and statistics reads, publishes lifecycle events to the
// broker, and answers asynchronous report requests from the other
// microservices.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/newunimol/attendance-service/config"
	"github.com/newunimol/attendance-service/internal/application/command"
	"github.com/newunimol/attendance-service/internal/application/eventhandler"
	"github.com/newunimol/attendance-service/internal/application/query"
	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/internal/infrastructure/messaging"
	"github.com/newunimol/attendance-service/internal/infrastructure/persistence/memory"
	"github.com/newunimol/attendance-service/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/newunimol/attendance-service/internal/infrastructure/persistence/redis"
	"github.com/newunimol/attendance-service/internal/infrastructure/token"
	httpapi "github.com/newunimol/attendance-service/internal/interface/http"
	"github.com/newunimol/attendance-service/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// Configuration and logging
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting attendance service",
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// Persistence
	// ─────────────────────────────────────────────────────────────────────────
	var repo attendance.Repository
	if cfg.Database.URL != "" {
		var conn *postgres.Connection
		err := retry.DatabaseRetrier().Do(ctx, func(ctx context.Context) error {
			var dialErr error
			conn, dialErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
			return dialErr
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer conn.Close()

		if err := postgres.Migrate(ctx, conn); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		repo = postgres.NewAttendanceRepository(conn, cfg.Database.QueryTimeout)
		logger.Info("using PostgreSQL attendance store")
	} else {
		repo = memory.NewAttendanceRepository()
		logger.Warn("DATABASE_URL not set, using in-memory attendance store")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Request deduplication
	// ─────────────────────────────────────────────────────────────────────────
	var deduper eventhandler.Deduper
	if !cfg.Redis.Disabled {
		client, err := redisinfra.NewClient(ctx, redisinfra.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Warn("redis unavailable, using in-memory request deduper", "error", err)
			deduper = memory.NewRequestDeduper(cfg.Broker.RequestDedupTTL)
		} else {
			defer client.Close()
			deduper = redisinfra.NewRequestDeduper(client, cfg.Broker.RequestDedupTTL)
			logger.Info("using Redis request deduper")
		}
	} else {
		deduper = memory.NewRequestDeduper(cfg.Broker.RequestDedupTTL)
		logger.Info("redis disabled, using in-memory request deduper")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Message broker
	// ─────────────────────────────────────────────────────────────────────────
	var broker messaging.Broker
	if cfg.Broker.URL != "" {
		var amqpBroker *messaging.AMQPBroker
		err := retry.BrokerRetrier().Do(ctx, func(_ context.Context) error {
			var dialErr error
			amqpBroker, dialErr = messaging.NewAMQPBroker(cfg.Broker.URL, logger)
			return dialErr
		})
		if err != nil {
			return fmt.Errorf("connect to broker: %w", err)
		}
		broker = amqpBroker
		logger.Info("using AMQP broker")
	} else {
		broker = messaging.NewInMemoryBroker(logger)
		logger.Warn("AMQP_URL not set, using in-process broker")
	}
	defer broker.Close()

	if err := broker.DeclareTopology(ctx, messaging.DefaultTopology()); err != nil {
		return fmt.Errorf("declare broker topology: %w", err)
	}

	publisher := messaging.NewPublisher(broker, logger)

	// ─────────────────────────────────────────────────────────────────────────
	// Application layer
	// ─────────────────────────────────────────────────────────────────────────
	queries := query.NewAttendanceQueries(repo)
	statistics := query.NewStatisticsQueries(repo)

	createHandler := command.NewCreateAttendanceHandler(repo, publisher, logger)
	updateHandler := command.NewUpdateAttendanceHandler(repo, publisher, logger)
	deleteHandler := command.NewDeleteAttendanceHandler(repo, publisher, logger)

	reportHandler := eventhandler.NewOnReportRequestedHandler(statistics, publisher, deduper, logger)
	courseHandler := eventhandler.NewOnCourseEventHandler(logger)

	// ─────────────────────────────────────────────────────────────────────────
	// Inbound event consumption
	// ─────────────────────────────────────────────────────────────────────────
	consumer := messaging.NewConsumer(broker, logger)
	consumer.Register(messaging.QueueReportRequested, func(ctx context.Context, d messaging.Delivery) error {
		return reportHandler.Handle(ctx, d.Body)
	})
	consumer.Register(messaging.QueueCourseScheduled, func(ctx context.Context, d messaging.Delivery) error {
		return courseHandler.Handle(ctx, d.Body)
	})
	consumer.Register(messaging.QueueCourseUpdated, func(ctx context.Context, d messaging.Delivery) error {
		return courseHandler.Handle(ctx, d.Body)
	})

	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP API
	// ─────────────────────────────────────────────────────────────────────────
	server := httpapi.NewServer(httpapi.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}, httpapi.Dependencies{
		CreateHandler: createHandler,
		UpdateHandler: updateHandler,
		DeleteHandler: deleteHandler,
		Queries:       queries,
		Statistics:    statistics,
		Authorizer:    token.NewAuthorizer(cfg.Auth.JWTSecret),
		Logger:        logger,
	})

	serverErr := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// Shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
	if err := broker.Close(); err != nil {
		logger.Error("broker close failed", "error", err)
	}

	logger.Info("attendance service stopped")
	return nil
}

// newLogger builds the slog logger. Without an explicit LOG_FORMAT the
// handler is text in development and JSON everywhere else.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Observability.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	format := cfg.Observability.LogFormat
	if format == "" {
		if cfg.IsDevelopment() {
			format = "text"
		} else {
			format = "json"
		}
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
