package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"github.com/Joseda-hg/codeplanner/internal/logging"
	"github.com/Joseda-hg/codeplanner/internal/web"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	flags *Flags
	app   *App

	// flags
	port int
}

func NewServeCmd(flags *Flags, app *App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the HTTP API",
		UsageText: "codeplanner serve [--port N]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "port",
				Aliases:     []string{"p"},
				Usage:       "listen port (overrides web.port)",
				Sources:     cli.EnvVars("CODEPLANNER_PORT"),
				Destination: &cmd.port,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	port := cmd.app.Config.Web.Port
	if cmd.port != 0 {
		port = cmd.port
	}
	if err := portInRange(port); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	logger := logging.Component("web")
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           web.NewServer(cmd.app.Planner, cmd.app.Store, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msgf("web server running at http://localhost%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info().Msg("shutting down web server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown web server: %w", err)
	}
	return nil
}

func portInRange(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
