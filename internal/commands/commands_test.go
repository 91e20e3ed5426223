package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/Joseda-hg/codeplanner/internal/config"
	"github.com/Joseda-hg/codeplanner/internal/llm"
	"github.com/Joseda-hg/codeplanner/internal/model"
	"github.com/Joseda-hg/codeplanner/internal/store"
)

type stubCompleter struct {
	content string
	prompts []string
}

func (s *stubCompleter) CheckCredentials() error { return nil }

func (s *stubCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.prompts = append(s.prompts, req.Messages[len(req.Messages)-1].Content)
	return s.content, nil
}

func newTestApp(t *testing.T, c llm.Completer) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Upstream.Concurrency = 1

	app := NewApp(cfg, store.New(store.NewMemorySlots(), zerolog.Nop()), c)
	out := &bytes.Buffer{}
	app.Out = out
	return app, out
}

func run(t *testing.T, app *App, args ...string) error {
	t.Helper()
	flags := &Flags{}
	root := &cli.Command{Name: "codeplanner"}
	root = NewGenerateCmd(flags, app).Register(root)
	root = NewUpdateCmd(flags, app).Register(root)
	root = NewListCmd(flags, app).Register(root)
	root = NewShowCmd(flags, app).Register(root)
	root = NewToggleCmd(flags, app).Register(root)
	root = NewEditCmd(flags, app).Register(root)
	root = NewDeleteCmd(flags, app).Register(root)
	return root.Run(context.Background(), append([]string{"codeplanner"}, args...))
}

func seedTasks(app *App) {
	app.Store.Replace(context.Background(), model.TaskList{
		{ID: "a", Title: "Schema", Description: "tables", Completed: true, CreatedAt: "2024-01-01T00:00:00.000Z"},
		{ID: "b", Title: "Handlers", Description: "routes", CodeSnippet: "SELECT id FROM t WHERE x", CreatedAt: "2024-01-01T00:00:00.000Z"},
	})
}

func TestGenerateCommand(t *testing.T) {
	c := &stubCompleter{content: `[{"id":"x","title":"Scaffold"},{"id":"y","title":"Auth"}]`}
	app, out := newTestApp(t, c)

	require.NoError(t, run(t, app, "generate", "a", "blog", "engine"))

	assert.Equal(t, []string{"a blog engine"}, c.prompts)
	assert.Equal(t, []string{"x", "y"}, app.Store.Load(context.Background()).IDs())
	assert.Contains(t, out.String(), "Generated 2 tasks")
	assert.Contains(t, out.String(), "Scaffold")
}

func TestGenerateCommandRequiresDescription(t *testing.T) {
	app, _ := newTestApp(t, &stubCompleter{})

	err := run(t, app, "generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid prompt")
}

func TestUpdateCommand(t *testing.T) {
	c := &stubCompleter{content: `{"implementation":"add middleware"}`}
	app, out := newTestApp(t, c)
	seedTasks(app)

	require.NoError(t, run(t, app, "update", "add", "auth"))

	require.Len(t, c.prompts, 1, "completed tasks are not sent upstream")
	assert.Contains(t, c.prompts[0], "Title: Handlers")
	assert.Equal(t, "add middleware", app.Store.Load(context.Background())[1].Implementation)
	assert.Contains(t, out.String(), "Tasks updated successfully")
}

func TestUpdateCommandEmptyStore(t *testing.T) {
	app, _ := newTestApp(t, &stubCompleter{})

	err := run(t, app, "update", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No existing tasks found to update")
}

func TestListCommand(t *testing.T) {
	app, out := newTestApp(t, &stubCompleter{})
	seedTasks(app)

	require.NoError(t, run(t, app, "list", "--status", "active"))
	assert.Contains(t, out.String(), "Handlers")
	assert.NotContains(t, out.String(), "Schema")
	assert.Contains(t, out.String(), "1 of 2 tasks shown, 50% complete")
}

func TestListCommandJSON(t *testing.T) {
	app, out := newTestApp(t, &stubCompleter{})
	seedTasks(app)

	require.NoError(t, run(t, app, "list", "--json", "--sort", "desc"))

	var payload struct {
		Tasks    model.TaskList `json:"tasks"`
		Total    int            `json:"total"`
		Progress int            `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, []string{"a", "b"}, payload.Tasks.IDs())
	assert.Equal(t, 2, payload.Total)
	assert.Equal(t, 50, payload.Progress)
}

func TestListCommandEmpty(t *testing.T) {
	app, out := newTestApp(t, &stubCompleter{})

	require.NoError(t, run(t, app, "list"))
	assert.Contains(t, out.String(), "No tasks yet")
}

func TestShowCommand(t *testing.T) {
	app, out := newTestApp(t, &stubCompleter{})
	seedTasks(app)

	require.NoError(t, run(t, app, "show", "b"))
	assert.Contains(t, out.String(), "[ ] Handlers")
	assert.Contains(t, out.String(), "Code (sql):")

	err := run(t, app, "show", "missing")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	assert.ErrorIs(t, run(t, app, "show"), errMissingID)
}

func TestToggleAndDeleteCommands(t *testing.T) {
	app, out := newTestApp(t, &stubCompleter{})
	seedTasks(app)
	ctx := context.Background()

	require.NoError(t, run(t, app, "toggle", "b"))
	assert.True(t, app.Store.Load(ctx)[1].Completed)
	assert.Contains(t, out.String(), "[x] Handlers")

	require.NoError(t, run(t, app, "delete", "a"))
	assert.Equal(t, []string{"b"}, app.Store.Load(ctx).IDs())

	assert.ErrorIs(t, run(t, app, "delete", "a"), store.ErrTaskNotFound)
}

func TestEditCommand(t *testing.T) {
	app, _ := newTestApp(t, &stubCompleter{})
	seedTasks(app)
	ctx := context.Background()

	require.NoError(t, run(t, app, "edit", "b", "--title", "HTTP handlers"))
	edited := app.Store.Load(ctx)[1]
	assert.Equal(t, "HTTP handlers", edited.Title)
	assert.Equal(t, "routes", edited.Description)
	assert.NotEmpty(t, edited.UpdatedAt)

	require.NoError(t, run(t, app, "edit", "b", "--description", ""))
	assert.Equal(t, "", app.Store.Load(ctx)[1].Description)

	assert.ErrorIs(t, run(t, app, "edit", "b", "--title", " "), store.ErrInvalidTitle)
	assert.Error(t, run(t, app, "edit", "b"))
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	for _, backend := range []string{config.BackendMemory, config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Storage.Backend = backend
			cfg.Storage.Dir = filepath.Join(dir, "slots")
			cfg.DBPath = filepath.Join(dir, "data", "codeplanner.db")

			app, err := Open(context.Background(), cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = app.Close() })

			app.Store.Replace(context.Background(), model.TaskList{{ID: "a", Title: "t", CreatedAt: "2024-01-01T00:00:00.000Z"}})
			assert.Equal(t, []string{"a"}, app.Store.Load(context.Background()).IDs())
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "redis"

	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}
