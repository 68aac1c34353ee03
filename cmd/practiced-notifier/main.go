package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"practicelog/internal/config"
	"practicelog/internal/log"
	"practicelog/internal/notify"
)

// practiced-notifier consumes queued reminder messages and performs the
// actual delivery. Splitting delivery into its own process keeps the core
// unaware of how (or whether) the host surfaces notifications.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.ParseLevel(cfg.LogLevel), log.ComponentNotify)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("PRACTICELOG_AMQP_URL is required for the notifier")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("practiced-notifier started",
		log.FieldExchange, cfg.AMQPExchange, log.FieldQueue, cfg.AMQPQueue)

	deliver := notify.LogNotifier{}
	err := notify.RunConsumer(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, func(msg *notify.ReminderMessage) error {
		return deliver.Deliver(ctx, msg.Title, msg.Body)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("practiced-notifier stopped gracefully")
}
