package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/chatseal/cmd/app/commands"
	"github.com/allisson/chatseal/internal/app"
	"github.com/allisson/chatseal/internal/config"
)

func getAdminCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "sweep-admin-access",
			Usage: "Clear admin access grants whose window has passed",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.AdminAccessUseCase()
				if err != nil {
					return err
				}

				return commands.RunSweepAdminAccess(
					ctx,
					useCase,
					container.Logger(),
					commands.Stdout(),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-admin-access",
			Usage: "Revoke admin access to a user's conversations",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.AdminAccessUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeAdminAccess(
					ctx,
					useCase,
					container.Logger(),
					commands.Stdout(),
					cmd.String("user-id"),
					cmd.String("format"),
				)
			},
		},
	}
}
