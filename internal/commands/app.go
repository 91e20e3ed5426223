package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/Joseda-hg/codeplanner/internal/config"
	"github.com/Joseda-hg/codeplanner/internal/db"
	"github.com/Joseda-hg/codeplanner/internal/llm"
	"github.com/Joseda-hg/codeplanner/internal/logging"
	"github.com/Joseda-hg/codeplanner/internal/planner"
	"github.com/Joseda-hg/codeplanner/internal/store"
)

// App carries the wired dependencies shared by every command. main allocates
// it before commands are registered and fills it in the Before hook.
type App struct {
	Config  config.Config
	Store   *store.Store
	Planner *planner.Service
	Out     io.Writer

	database *sqlx.DB
}

// Open builds the storage backend, upstream client and planner from cfg.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	slots, database, err := openSlots(cfg)
	if err != nil {
		return nil, err
	}

	completer := llm.NewOpenAI(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Upstream.BaseURL,
		Model:   cfg.Upstream.Model,
		Timeout: cfg.Upstream.Timeout,
	})

	st := store.New(slots, logging.Component("store"), store.WithKey(cfg.Storage.Key))
	app := NewApp(cfg, st, completer)
	app.database = database

	logging.Component("app").Debug().
		Str("backend", cfg.Storage.Backend).
		Str("model", completer.Model()).
		Bool("credential", completer.CheckCredentials() == nil).
		Msg("app ready")
	return app, nil
}

// NewApp wires the planner around an existing store and completer.
func NewApp(cfg config.Config, st *store.Store, completer llm.Completer) *App {
	generator := planner.NewGenerator(completer, planner.GeneratorOptions{
		Temperature: cfg.Upstream.Temperature,
		MaxTokens:   cfg.Upstream.GenerateMaxTokens,
	}, logging.Component("generator"))

	updater := planner.NewUpdater(completer, planner.UpdaterOptions{
		Temperature: cfg.Upstream.Temperature,
		MaxTokens:   cfg.Upstream.UpdateMaxTokens,
		Concurrency: cfg.Upstream.Concurrency,
	}, logging.Component("updater"))

	return &App{
		Config:  cfg,
		Store:   st,
		Planner: planner.NewService(generator, updater, st),
		Out:     os.Stdout,
	}
}

func (a *App) Close() error {
	if a.database == nil {
		return nil
	}
	return a.database.Close()
}

func openSlots(cfg config.Config) (store.Slots, *sqlx.DB, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return store.NewMemorySlots(), nil, nil
	case config.BackendFile:
		slots, err := store.NewFileSlots(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file storage: %w", err)
		}
		return slots, nil, nil
	case config.BackendSQLite, "":
		if err := config.EnsureDir(cfg.DBPath); err != nil {
			return nil, nil, err
		}
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return db.NewSlotStore(database), database, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
