package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/chatseal/cmd/app/commands"
	"github.com/allisson/chatseal/internal/app"
	backfillUseCase "github.com/allisson/chatseal/internal/backfill/usecase"
	"github.com/allisson/chatseal/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the admin HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "worker",
			Usage: "Deliver queued authorization emails from the outbox",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(context.Background()) }()

				outboxUseCase, err := container.OutboxUseCase()
				if err != nil {
					return err
				}

				return commands.RunWorker(ctx, outboxUseCase, container.Logger())
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "backfill-encryption",
			Usage: "Encrypt conversations and messages still stored in plaintext",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "workers",
					Aliases: []string{"w"},
					Usage:   "Number of owners migrated concurrently (defaults to BACKFILL_WORKERS)",
				},
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Usage:   "Rows read per page (defaults to BACKFILL_BATCH_SIZE)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				opts := backfillUseCase.Options{
					BatchSize: cfg.BackfillBatchSize,
					Workers:   cfg.BackfillWorkers,
				}
				if cmd.IsSet("batch-size") {
					opts.BatchSize = int(cmd.Int("batch-size"))
				}
				if cmd.IsSet("workers") {
					opts.Workers = int(cmd.Int("workers"))
				}

				useCase, err := container.BackfillUseCase(opts)
				if err != nil {
					return err
				}

				return commands.RunBackfillEncryption(
					ctx,
					useCase,
					container.Logger(),
					commands.Stdout(),
					cmd.String("format"),
				)
			},
		},
	}
}
