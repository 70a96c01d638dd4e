package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/app"
	"wedding-invitation/internal/config"
	"wedding-invitation/internal/logger"
	"wedding-invitation/internal/notify"
)

func main() {
	_ = config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Options{Service: "notify-worker"})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Options{
		Service: "notify-worker",
		Level:   cfg.App.LogLevel,
		Format:  cfg.App.LogFormat,
	})
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("notify-worker stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wa, err := app.ConnectWhatsApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer wa.Disconnect()

	rmq, err := app.OpenRabbit(cfg, log)
	if err != nil {
		return err
	}
	defer rmq.Close()

	worker := notify.NewWorker(wa, cfg.Notify.Timeout, logger.Component(log, "notify"))

	log.Info().Str("queue", cfg.AMQP.Queue).Msg("waiting for notification jobs")
	if err := rmq.Consume(ctx, worker.Handle); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info().Msg("shutdown complete")
	return nil
}
