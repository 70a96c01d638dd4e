// Package app wires configuration into the concrete store and notifier
// shared by the binaries under cmd/.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/config"
	"wedding-invitation/internal/logger"
	"wedding-invitation/internal/notify"
	"wedding-invitation/internal/rabbit"
	"wedding-invitation/internal/storage"
	"wedding-invitation/internal/whatsapp"
)

// OpenStore opens the store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Store, error) {
	log = logger.Component(log, "storage")

	switch cfg.Store.Driver {
	case config.StoreDriverFile:
		store, err := storage.NewFileStore(cfg.Store.File, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreDriverMongo:
		store, err := storage.NewMongoStore(ctx, storage.MongoConfig{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.MongoDB,
			Timeout:  cfg.Store.MongoTimeout,
		}, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// ConnectWhatsApp opens the device store and connects, pairing on first run.
func ConnectWhatsApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*whatsapp.Service, error) {
	wa, err := whatsapp.NewService(ctx, whatsapp.Config{
		DataDir:     cfg.WhatsApp.DataDir,
		CountryCode: cfg.Notify.CountryCode,
	}, logger.Component(log, "whatsapp"))
	if err != nil {
		return nil, err
	}
	if err := wa.Connect(ctx); err != nil {
		return nil, err
	}
	return wa, nil
}

// OpenRabbit connects to the notification exchange and queue.
func OpenRabbit(cfg *config.Config, log zerolog.Logger) (*rabbit.Client, error) {
	return rabbit.NewRabbit(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger.Component(log, "rabbit"))
}

func Template(cfg *config.Config) notify.Template {
	return notify.Template{
		BrideName: cfg.Wedding.BrideName,
		GroomName: cfg.Wedding.GroomName,
		Date:      cfg.Wedding.Date,
		Location:  cfg.Wedding.Location,
	}
}

// OpenNotifier builds the notifier selected by NOTIFY_DRIVER. The returned
// close func releases its connection and is never nil.
func OpenNotifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) (notify.Notifier, func(), error) {
	if !cfg.Notify.Enabled() {
		return notify.Noop{}, func() {}, nil
	}

	switch cfg.Notify.Driver {
	case config.NotifyDriverWhatsApp:
		wa, err := ConnectWhatsApp(ctx, cfg, log)
		if err != nil {
			return nil, func() {}, fmt.Errorf("whatsapp: %w", err)
		}
		return notify.NewWhatsApp(wa, Template(cfg)), wa.Disconnect, nil
	case config.NotifyDriverAMQP:
		rmq, err := OpenRabbit(cfg, log)
		if err != nil {
			return nil, func() {}, fmt.Errorf("rabbitmq: %w", err)
		}
		return notify.NewQueue(rmq, Template(cfg)), rmq.Close, nil
	}
	return nil, func() {}, fmt.Errorf("unknown notify driver %q", cfg.Notify.Driver)
}
