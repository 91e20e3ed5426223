package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/Joseda-hg/codeplanner/internal/codelang"
	"github.com/Joseda-hg/codeplanner/internal/model"
)

var errMissingID = errors.New("task id is required")

type ListCmd struct {
	flags *Flags
	app   *App

	// flags
	status     string
	search     string
	sort       string
	jsonOutput bool
}

func NewListCmd(flags *Flags, app *App) *ListCmd {
	return &ListCmd{flags: flags, app: app}
}

func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List stored tasks",
		UsageText: "codeplanner list [--status all|active|completed] [--search text] [--sort asc|desc] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Usage:       "filter by status (all, active, completed)",
				Value:       string(model.StatusAll),
				Destination: &cmd.status,
			},
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"q"},
				Usage:       "case-insensitive match on title or description",
				Destination: &cmd.search,
			},
			&cli.StringFlag{
				Name:        "sort",
				Usage:       "title order (asc, desc)",
				Value:       string(model.SortAsc),
				Destination: &cmd.sort,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ListCmd) run(ctx context.Context, c *cli.Command) error {
	tasks := cmd.app.Store.Load(ctx)
	visible := tasks.Apply(model.Filter{
		Query:  cmd.search,
		Status: model.NormalizeStatus(cmd.status),
		Sort:   model.NormalizeSort(cmd.sort),
	})

	if cmd.jsonOutput {
		enc := json.NewEncoder(cmd.app.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Tasks    model.TaskList `json:"tasks"`
			Total    int            `json:"total"`
			Progress int            `json:"progress"`
		}{visible, len(tasks), tasks.Progress()})
	}

	if len(tasks) == 0 {
		fmt.Fprintln(cmd.app.Out, "No tasks yet. Run 'codeplanner generate <description>' to create some.")
		return nil
	}

	printTaskLines(cmd.app.Out, visible)
	fmt.Fprintf(cmd.app.Out, "\n%d of %d tasks shown, %d%% complete\n", len(visible), len(tasks), tasks.Progress())
	return nil
}

type ShowCmd struct {
	flags *Flags
	app   *App
}

func NewShowCmd(flags *Flags, app *App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show one task with its implementation notes",
		UsageText: "codeplanner show <id>",
		Action:    cmd.run,
	})
	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return errMissingID
	}

	task, err := cmd.app.Store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("show %s: %w", id, err)
	}

	out := cmd.app.Out
	fmt.Fprintf(out, "%s %s\n", checkbox(task.Completed), task.Title)
	fmt.Fprintf(out, "id:      %s\n", task.ID)
	fmt.Fprintf(out, "created: %s\n", task.CreatedAt)
	if task.UpdatedAt != "" {
		fmt.Fprintf(out, "updated: %s\n", task.UpdatedAt)
	}
	fmt.Fprintf(out, "\n%s\n", task.Description)
	if task.Implementation != "" {
		fmt.Fprintf(out, "\nImplementation:\n%s\n", task.Implementation)
	}
	if task.CodeSnippet != "" {
		fmt.Fprintf(out, "\nCode (%s):\n%s\n", codelang.Detect("", task.CodeSnippet), task.CodeSnippet)
	}
	return nil
}

type ToggleCmd struct {
	flags *Flags
	app   *App
}

func NewToggleCmd(flags *Flags, app *App) *ToggleCmd {
	return &ToggleCmd{flags: flags, app: app}
}

func (cmd *ToggleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "toggle",
		Usage:     "Flip a task between active and completed",
		UsageText: "codeplanner toggle <id>",
		Action:    cmd.run,
	})
	return app
}

func (cmd *ToggleCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return errMissingID
	}

	tasks, err := cmd.app.Store.ToggleCompleted(ctx, id)
	if err != nil {
		return fmt.Errorf("toggle %s: %w", id, err)
	}

	task := tasks[tasks.Index(id)]
	fmt.Fprintf(cmd.app.Out, "%s %s\n", checkbox(task.Completed), task.Title)
	return nil
}

type EditCmd struct {
	flags *Flags
	app   *App

	// flags
	title       string
	description string
}

func NewEditCmd(flags *Flags, app *App) *EditCmd {
	return &EditCmd{flags: flags, app: app}
}

func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Change a task's title or description",
		UsageText: "codeplanner edit <id> [--title text] [--description text]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "new title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "new description",
				Destination: &cmd.description,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return errMissingID
	}
	if !c.IsSet("title") && !c.IsSet("description") {
		return errors.New("nothing to change: pass --title and/or --description")
	}

	current, err := cmd.app.Store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("edit %s: %w", id, err)
	}

	title, description := current.Title, current.Description
	if c.IsSet("title") {
		title = cmd.title
	}
	if c.IsSet("description") {
		description = cmd.description
	}

	if _, err := cmd.app.Store.Edit(ctx, id, title, description); err != nil {
		return fmt.Errorf("edit %s: %w", id, err)
	}
	fmt.Fprintf(cmd.app.Out, "Updated %s\n", id)
	return nil
}

type DeleteCmd struct {
	flags *Flags
	app   *App
}

func NewDeleteCmd(flags *Flags, app *App) *DeleteCmd {
	return &DeleteCmd{flags: flags, app: app}
}

func (cmd *DeleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Remove a task",
		UsageText: "codeplanner delete <id>",
		Action:    cmd.run,
	})
	return app
}

func (cmd *DeleteCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return errMissingID
	}

	tasks, err := cmd.app.Store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	fmt.Fprintf(cmd.app.Out, "Deleted %s, %d tasks left\n", id, len(tasks))
	return nil
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func printTaskLines(w io.Writer, tasks model.TaskList) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, task := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", checkbox(task.Completed), task.ID, oneLine(task.Title))
	}
	_ = tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
