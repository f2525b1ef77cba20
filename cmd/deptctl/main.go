package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spec-kit/ticket-router/internal/cli"
	"github.com/spec-kit/ticket-router/internal/config"
	"github.com/spec-kit/ticket-router/internal/department"
	"github.com/spec-kit/ticket-router/internal/observability"
	"github.com/spec-kit/ticket-router/internal/persistence"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	registry, err := department.LoadFile(cfg.Departments.Path)
	if err != nil {
		return fmt.Errorf("loading departments: %w", err)
	}

	app := &cli.App{
		OpenStores: func(ctx context.Context) (*persistence.ConnectionResolver, func(), error) {
			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, registry, logger)
			if err != nil {
				return nil, nil, fmt.Errorf("connecting postgres: %w", err)
			}
			return persistence.NewConnectionResolver(registry, pg.Conns()), pg.Close, nil
		},
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	}

	return cli.NewRootCmd(app).ExecuteContext(context.Background())
}
