package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/app"
	"wedding-invitation/internal/config"
	"wedding-invitation/internal/handler"
	"wedding-invitation/internal/logger"
	"wedding-invitation/internal/metrics"
	"wedding-invitation/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Options{Service: "wedding-api"})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Options{
		Service: "wedding-api",
		Level:   cfg.App.LogLevel,
		Format:  cfg.App.LogFormat,
	})
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("wedding-api stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	notifier, closeNotifier, err := app.OpenNotifier(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeNotifier()
	log.Info().Str("store", cfg.Store.Driver).Str("notifier", notifier.Name()).Msg("backends ready")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc, err := service.NewService(service.Params{
		Store:         store,
		Notifier:      notifier,
		Metrics:       m,
		Logger:        logger.Component(log, "service"),
		NotifyTimeout: cfg.Notify.Timeout,
	})
	if err != nil {
		return err
	}

	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.Options{
		Service:     svc,
		Logger:      logger.Component(log, "http"),
		Metrics:     m,
		Gatherer:    reg,
		IsProd:      cfg.App.IsProd(),
		StaticDir:   cfg.App.StaticDir,
		CORSOrigins: cfg.App.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	if err := svc.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("pending notifications abandoned")
	}

	log.Info().Msg("shutdown complete")
	return nil
}
