package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"hexagonal-todo/infrastructure/config"
	"hexagonal-todo/infrastructure/di"
	"hexagonal-todo/interfaces/worker"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	stopWatch, err := container.WatchConfig()
	if err != nil {
		container.Logger.Warn("Configuration hot reloading unavailable", zap.Error(err))
	} else {
		defer stopWatch()
	}

	container.Logger.Info("Starting worker service",
		zap.String("environment", cfg.Environment),
		zap.String("queue", cfg.TodoQueue),
		zap.String("eventBus", cfg.EventBusName),
	)

	relay := worker.NewRelay(container.EventQueue, container.EventSink, di.ReceiveOptions(cfg), container.Logger)
	if err := relay.Run(ctx); err != nil {
		container.Logger.Error("Worker stopped with error", zap.Error(err))
	}

	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Worker service stopped")
}
