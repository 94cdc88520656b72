package main

import (
	"fmt"
	"os"

	"user-crud-service/cmd/api/app"
	"user-crud-service/cmd/api/server"

	"github.com/urfave/cli/v2"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	cliApp := &cli.App{
		Name:    "user-crud-service",
		Usage:   "HTTP CRUD service for user records",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Directory containing app.env",
				Value:   ".",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: serve,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "application exited with error: %v\n", err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	ctx, stop := server.WithSignal(c.Context)
	defer stop()

	a, err := app.New(ctx, c.String("config"))
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
