package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alexnthnz/booking-notifications/internal/channels"
	"github.com/alexnthnz/booking-notifications/internal/config"
	"github.com/alexnthnz/booking-notifications/internal/database"
	"github.com/alexnthnz/booking-notifications/internal/monitoring"
	"github.com/alexnthnz/booking-notifications/internal/notification"
	"github.com/alexnthnz/booking-notifications/internal/queue"
	"github.com/alexnthnz/booking-notifications/internal/worker"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Booking Confirmation Dispatcher")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := monitoring.NewMetrics()

	// Connect to PostgreSQL
	postgres, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer postgres.Close()

	if err := postgres.InitSchema(); err != nil {
		logger.Fatal("Failed to initialize database schema", zap.Error(err))
	}
	logger.Info("Database connected and schema initialized")

	// Connect to Redis
	redis, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Redis connected")

	locale, err := notification.LocaleFromConfig(cfg.Locale)
	if err != nil {
		logger.Fatal("Failed to load locale", zap.Error(err))
	}

	transport, err := channels.NewEmailTransport(cfg.Mail)
	if err != nil {
		logger.Fatal("Failed to initialize email transport", zap.Error(err))
	}
	logger.Info("Email transport initialized", zap.String("provider", cfg.Mail.Provider))

	notifiers, err := channels.NewTextNotifiers(ctx, cfg.Channels)
	if err != nil {
		logger.Fatal("Failed to initialize text channels", zap.Error(err))
	}
	for _, n := range notifiers {
		logger.Info("Text channel initialized", zap.String("channel", string(n.Channel())))
	}

	dispatcher := notification.NewDispatcher(
		notification.NewRenderer(locale),
		transport,
		database.NewMessageStore(postgres),
		notifiers,
		notification.DispatcherConfig{
			Timeout:     cfg.Dispatch.Timeout,
			Concurrency: cfg.Dispatch.Concurrency,
		},
	)
	service := notification.NewService(dispatcher, metrics, logger)

	w := worker.New(
		service,
		database.NewConfirmationGuard(redis, cfg.Dispatch.GuardTTL),
		database.NewOutcomeLog(postgres),
		metrics,
		logger,
	)

	consumer := queue.NewConsumer(cfg.Kafka, logger)
	defer consumer.Close()
	logger.Info("Kafka consumer initialized",
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group_id", cfg.Kafka.GroupID))

	// Start metrics server if enabled
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}

		go func() {
			logger.Info("Starting metrics server", zap.Int("port", cfg.Metrics.Port))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("Starting to consume booking confirmations")
		err := consumer.ConsumeBookingConfirmations(ctx, w.Handle)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Consumer error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down dispatcher...")
	cancel()

	select {
	case <-done:
	case <-time.After(cfg.Dispatch.Timeout + 5*time.Second):
		logger.Warn("Consumer did not stop in time")
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server forced to shutdown", zap.Error(err))
		}
	}

	logger.Info("Dispatcher exited")
}
