package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/chatseal/cmd/app/commands"
	adminAccessService "github.com/allisson/chatseal/internal/adminaccess/service"
	"github.com/allisson/chatseal/internal/app"
	"github.com/allisson/chatseal/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new master secret for per-user key derivation",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI used to wrap the secret (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				return commands.RunCreateMasterKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.Stdout(),
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "hash-admin-key",
			Usage: "Hash an admin API key for ADMIN_API_KEY_HASH (generates one when --key is omitted)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "key",
					Aliases: []string{"k"},
					Value:   "",
					Usage:   "Plain admin API key",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunHashAdminKey(
					adminAccessService.NewAdminKeyService(),
					commands.Stdout(),
					cmd.String("key"),
				)
			},
		},
	}
}
