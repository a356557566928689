// ABOUTME: Entry point for the grimoire CLI and MCP server
// ABOUTME: Parses flags with kong, loads config and dispatches to the selected command
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/harperreed/grimoire/cli"
	"github.com/harperreed/grimoire/config"
	"github.com/harperreed/grimoire/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root cli.CLI
	cmd := kong.Parse(&root,
		kong.Name("grimoire"),
		kong.Description("Contact pipeline and task board for a magical back office."),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	cfg, err := config.Load(config.DefaultSource())
	cmd.FatalIfErrorf(err)
	root.Apply(cfg)
	cmd.FatalIfErrorf(cfg.Validate())

	log := logger.New(logger.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})

	app, err := cli.Open(ctx, cfg, version, os.Stdout, log)
	cmd.FatalIfErrorf(err)

	err = cmd.Run(app)
	if closeErr := app.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("failed to close stores")
	}
	cmd.FatalIfErrorf(err)
}
