package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/healthbridge/telehealth-platform/cmd/mainconfig"
	"github.com/healthbridge/telehealth-platform/internal/api/router"
	"github.com/healthbridge/telehealth-platform/internal/appointments"
	appconfig "github.com/healthbridge/telehealth-platform/internal/config"
	"github.com/healthbridge/telehealth-platform/internal/http/handlers"
	"github.com/healthbridge/telehealth-platform/internal/notifications"
	"github.com/healthbridge/telehealth-platform/internal/observability/metrics"
	"github.com/healthbridge/telehealth-platform/internal/schedule"
	"github.com/healthbridge/telehealth-platform/internal/users"
	"github.com/healthbridge/telehealth-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting telehealth-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)

	// Optional Redis cache for the user directory.
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		cache = redis.NewClient(opts)
	}
	directory := users.NewDirectory(dynamoClient, cfg.UsersTable, cache, cfg.UserCacheTTL, logger)

	// Notification fan-out with an SQS dead-letter queue when configured.
	notificationStore := notifications.NewStore(dynamoClient, cfg.NotificationsTable, logger)
	var sink notifications.DeadLetterSink = notifications.NewLogSink(logger)
	if cfg.DeadLetterQueue != "" {
		sink = notifications.NewSQSSink(sqs.NewFromConfig(awsCfg), cfg.DeadLetterQueue)
	}
	fanout := notifications.NewFanout(notificationStore, directory, sink, engineMetrics, logger)

	appointmentStore := appointments.NewStore(dynamoClient, cfg.AppointmentsTable, logger)
	engine := appointments.NewEngine(appointmentStore, fanout, engineMetrics, logger)

	scheduleStore := schedule.NewStore(dynamoClient, cfg.SchedulesTable, logger)
	availability := schedule.NewAvailability(scheduleStore, appointmentStore, logger)

	r := router.New(&router.Config{
		Logger:               logger,
		AppointmentsHandler:  appointments.NewHandler(engine, logger),
		NotificationsHandler: notifications.NewHandler(notificationStore, logger),
		ScheduleHandler:      schedule.NewHandler(availability, logger),
		Dashboard:            handlers.NewDashboard(engine, logger),
		MetricsHandler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		BookingRateLimit:     cfg.BookingRateLimit,
		BookingBurst:         cfg.BookingBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
