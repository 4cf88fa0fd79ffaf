package main

import (
	"context"
	"log"
	"time"
	_ "time/tzdata"

	"hexagonal-todo/domain/core/entities"
	"hexagonal-todo/infrastructure/config"
	"hexagonal-todo/infrastructure/di"
	todolambda "hexagonal-todo/interfaces/lambda"
	"hexagonal-todo/pkg/common"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var (
	// resolver is built once per container
	resolver *todolambda.Resolver

	container *di.Container

	// coldStart tracks whether this is a cold start invocation
	coldStart = true
)

// init runs during cold start
func init() {
	coldStartTime := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	resolver = todolambda.NewResolver(container.TodoService, container.Tracer, container.Logger)

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
	)
}

// Handler is the AppSync field resolver entry point
func Handler(ctx context.Context, event todolambda.Event) (*entities.Todo, error) {
	ctx = common.WithColdStart(ctx, coldStart)
	coldStart = false

	result, err := resolver.Handle(ctx, event)

	// Lambda may freeze the container right after returning
	_ = container.Logger.Sync()
	return result, err
}

func main() {
	lambda.Start(Handler)
}
