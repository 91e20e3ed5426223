package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Joseda-hg/codeplanner/internal/logging"
)

type GenerateCmd struct {
	flags *Flags
	app   *App
}

func NewGenerateCmd(flags *Flags, app *App) *GenerateCmd {
	return &GenerateCmd{flags: flags, app: app}
}

func (cmd *GenerateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "generate",
		Usage:     "Generate a task list from a project description",
		UsageText: "codeplanner generate <description>",
		Description: `Asks the upstream model to break the description into tasks and replaces
the stored task list with the result. The stored list is left untouched
when generation fails.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *GenerateCmd) run(ctx context.Context, c *cli.Command) error {
	description := strings.Join(c.Args().Slice(), " ")

	tasks, err := cmd.app.Planner.GenerateAndSave(ctx, description)
	if err != nil {
		return fmt.Errorf("generate tasks: %w", err)
	}

	logging.Component("planner").Info().Int("tasks", len(tasks)).Msg("stored generated tasks")
	fmt.Fprintf(cmd.app.Out, "Generated %d tasks\n", len(tasks))
	printTaskLines(cmd.app.Out, tasks)
	return nil
}

type UpdateCmd struct {
	flags *Flags
	app   *App
}

func NewUpdateCmd(flags *Flags, app *App) *UpdateCmd {
	return &UpdateCmd{flags: flags, app: app}
}

func (cmd *UpdateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "update",
		Usage:     "Regenerate guidance for incomplete tasks",
		UsageText: "codeplanner update <requirements>",
		Description: `Sends each incomplete stored task with the new requirements to the
upstream model and stores the refreshed implementation notes and code
snippets. Completed tasks are never sent. A task whose request fails keeps
its previous guidance.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *UpdateCmd) run(ctx context.Context, c *cli.Command) error {
	requirements := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(requirements) == "" {
		return errors.New("requirements are required")
	}

	result, err := cmd.app.Planner.UpdateSaved(ctx, requirements)
	if err != nil {
		return fmt.Errorf("update tasks: %w", err)
	}

	fmt.Fprintln(cmd.app.Out, result.Message)
	if result.Failed > 0 {
		fmt.Fprintf(cmd.app.Out, "%d updated, %d kept after upstream failures\n", result.Updated, result.Failed)
	}
	printTaskLines(cmd.app.Out, result.Tasks)
	return nil
}
