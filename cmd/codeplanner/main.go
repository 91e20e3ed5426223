package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/Joseda-hg/codeplanner/internal/commands"
	"github.com/Joseda-hg/codeplanner/internal/config"
	"github.com/Joseda-hg/codeplanner/internal/logging"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		logCloser func()
		planApp   = &commands.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "codeplanner",
		Usage:     "Turn project descriptions into implementation task lists",
		UsageText: "codeplanner [global options] command [command options]",
		Description: `codeplanner asks an OpenAI-compatible model to break a project description
into tasks with implementation notes and code snippets, keeps the list on
disk, and regenerates guidance for unfinished tasks when requirements change.

Set OPENAI_API_KEY in the environment or in a .env file before generating.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("CODEPLANNER_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("CODEPLANNER_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("CODEPLANNER_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logging.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if cfg.DBPath == "" {
				cfg.DBPath = config.DefaultDBPath(flags.ConfigPath)
			}
			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid config %s: %w", flags.ConfigPath, err)
			}
			if err := config.Save(flags.ConfigPath, cfg); err != nil {
				log.Warn().Err(err).Str("path", flags.ConfigPath).Msg("failed to save config")
			}

			// credentials are read after saving so they never reach the file
			cfg.LoadEnv()

			opened, err := commands.Open(ctx, cfg)
			if err != nil {
				return ctx, err
			}
			*planApp = *opened
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if err := planApp.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
				return err
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewServeCmd(flags, planApp).Register(app)
	app = commands.NewGenerateCmd(flags, planApp).Register(app)
	app = commands.NewUpdateCmd(flags, planApp).Register(app)
	app = commands.NewListCmd(flags, planApp).Register(app)
	app = commands.NewShowCmd(flags, planApp).Register(app)
	app = commands.NewToggleCmd(flags, planApp).Register(app)
	app = commands.NewEditCmd(flags, planApp).Register(app)
	app = commands.NewDeleteCmd(flags, planApp).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}
