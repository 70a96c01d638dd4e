package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wedding-invitation/internal/app"
	"wedding-invitation/internal/config"
	"wedding-invitation/internal/logger"
	"wedding-invitation/internal/service"
)

func main() {
	fmt.Println("💍 Wedding RSVP Admin")
	fmt.Println("=====================")

	_ = config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so they do not interleave with the menu.
	log := logger.New(logger.Options{
		Service: "wedding-admin",
		Level:   cfg.App.LogLevel,
		Format:  "console",
		Output:  os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		fmt.Printf("Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	svc, err := service.NewService(service.Params{
		Store:  store,
		Logger: logger.Component(log, "service"),
	})
	if err != nil {
		fmt.Printf("Error initializing service: %v\n", err)
		return
	}

	newConsole(svc, os.Stdin, os.Stdout).run(ctx)
	fmt.Println("Goodbye! 👋")
}
