package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"practicelog/internal/blobstore"
	"practicelog/internal/config"
	"practicelog/internal/id"
	"practicelog/internal/log"
	"practicelog/internal/notify"
	"practicelog/internal/reminder"
	"practicelog/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.ParseLevel(cfg.LogLevel), log.ComponentApp)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	blobs, err := blobstore.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		logger.Error("Failed to open blob store", log.FieldError, err, "path", cfg.SQLitePath)
		os.Exit(1)
	}
	defer blobs.Close()

	st := store.New(blobs, id.New(), logger)
	st.Load(context.Background())

	// Reminder delivery goes to AMQP when configured, a practiced-notifier
	// consumes it there. Without a broker the reminder lands in the log.
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.AMQPURL != "" {
		client, err := notify.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, reminders will log only", log.FieldError, err)
		} else {
			defer client.Close()
			notifier = client
			logger.Info("AMQP reminder delivery initialized",
				log.FieldExchange, cfg.AMQPExchange, log.FieldQueue, cfg.AMQPQueue)
		}
	}

	sched := reminder.New(st, notifier, logger)
	sched.SetInterval(cfg.TickInterval)
	sched.Refresh()
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
		sched.Stop()
		return nil
	})

	logger.Info("practiced started",
		"db", cfg.SQLitePath,
		"reminder_enabled", st.Settings().ReminderEnabled,
		"reminder_time", st.Settings().ReminderTime)

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Shutdown error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("practiced stopped gracefully")
}
