package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/five82/albumdeck/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "albumdeck: %v\n", err)
		return 1
	}
	return 0
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "albumdeck",
		Usage:   "Terminal front end for the albums API",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "override config path (default ~/.config/albumdeck/config.toml)",
			},
			&cli.StringFlag{
				Name:  "prefs",
				Usage: "override prefs path (default ~/.config/albumdeck/prefs.toml)",
			},
			&cli.StringFlag{
				Name:    "api",
				Usage:   "albums API base URL, e.g. http://localhost:8081",
				Sources: cli.EnvVars("ALBUMDECK_API"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file for APPLICATION_* variables the environment leaves unset",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "route",
				Usage: "first screen to show: /, /albums, /about or /edit/<id>",
				Value: "/",
			},
		},
		Action: runTUI,
		Commands: []*cli.Command{
			callCommand(),
			mockServerCommand(),
		},
	}
}

func optionsFrom(cmd *cli.Command) app.Options {
	return app.Options{
		ConfigPath: cmd.String("config"),
		PrefsPath:  cmd.String("prefs"),
		APIBase:    cmd.String("api"),
		LogLevel:   cmd.String("log-level"),
		EnvFile:    cmd.String("env-file"),
		Version:    version,
		StartPath:  cmd.String("route"),
	}
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return fmt.Errorf("unknown command %q", cmd.Args().First())
	}
	return app.Run(ctx, optionsFrom(cmd))
}
