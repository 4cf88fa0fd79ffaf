// Package main implements todoctl, a command line client that drives the
// todo use cases directly against the configured table.
package main

import (
	"context"
	"os"
	_ "time/tzdata"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/infrastructure/config"
	"hexagonal-todo/infrastructure/di"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "todoctl",
	Short:         "Manage todos stored in DynamoDB",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// openTodos builds the use cases from the environment. Tests replace it.
var openTodos = func(ctx context.Context) (ports.TodoUseCases, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return container.TodoService, func() { _ = container.Logger.Sync() }, nil
}
