package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pay-aware/pay_aware/internal/config"
	"github.com/pay-aware/pay_aware/internal/infra"
	"github.com/pay-aware/pay_aware/internal/logging"
	"github.com/pay-aware/pay_aware/internal/mailer"
	"github.com/pay-aware/pay_aware/internal/notifier"
	"github.com/pay-aware/pay_aware/internal/server"
	"github.com/pay-aware/pay_aware/internal/subscription"
	"github.com/pay-aware/pay_aware/internal/user"
)

const consumerGroupID = "pay-aware-reminders"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("connect redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}()

	mail := mailer.New(cfg)

	srv, err := server.New(cfg, db, cache, mail, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	subRepo := subscription.NewPostgresRepository(db)
	userRepo := user.NewPostgresRepository(db)
	notifRepo := notifier.NewPostgresRepository(db)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()

	// The reminder pipeline is optional: without a broker the API still
	// serves, it just never pushes.
	if cfg.KafkaBroker != "" {
		kp, err := infra.NewKafkaProducer(cfg.KafkaBroker, 30*time.Second)
		if err != nil {
			logger.Error("connect kafka producer", "error", err)
			os.Exit(1)
		}
		producer := notifier.NewProducer(kp, cfg.KafkaTopic)
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Warn("close kafka producer", "error", err)
			}
		}()

		scheduler := notifier.NewScheduler(subRepo, cache, producer, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error("start reminder scheduler", "error", err)
			os.Exit(1)
		}
		defer scheduler.Stop()

		group, err := infra.NewKafkaConsumerGroup(cfg.KafkaBroker, consumerGroupID)
		if err != nil {
			logger.Error("connect kafka consumer", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := group.Close(); err != nil {
				logger.Warn("close kafka consumer", "error", err)
			}
		}()

		pusher := notifier.NewExpoPusher(cfg.PushIconURL)
		consumer := notifier.NewConsumer(userRepo, subRepo, notifRepo, pusher, logger)
		go func() {
			if err := consumer.Run(consumerCtx, group, cfg.KafkaTopic); err != nil && err != context.Canceled {
				logger.Error("reminder consumer stopped", "error", err)
			}
		}()
	} else {
		logger.Warn("KAFKA_BROKER not set, reminder pipeline disabled")
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
