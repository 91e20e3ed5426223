package planner

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Joseda-hg/codeplanner/internal/llm"
	"github.com/Joseda-hg/codeplanner/internal/model"
)

const (
	MessageNothingToUpdate = "No incomplete tasks to update"
	MessageUpdated         = "Tasks updated successfully"
)

type UpdaterOptions struct {
	Temperature float32
	MaxTokens   int
	// Concurrency caps in-flight upstream calls; zero means one per task.
	Concurrency int
}

func DefaultUpdaterOptions() UpdaterOptions {
	return UpdaterOptions{Temperature: 0.7, MaxTokens: 1500}
}

type UpdateResult struct {
	Message string
	Tasks   model.TaskList
	Updated int
	Failed  int
}

// Updater regenerates guidance for incomplete tasks. Completed tasks and
// tasks whose upstream call fails are returned unchanged.
type Updater struct {
	completer llm.Completer
	opts      UpdaterOptions
	logger    zerolog.Logger
}

func NewUpdater(completer llm.Completer, opts UpdaterOptions, logger zerolog.Logger) *Updater {
	return &Updater{completer: completer, opts: opts, logger: logger}
}

func (u *Updater) Update(ctx context.Context, existing model.TaskList, completedIDs []string, requirements string) (UpdateResult, error) {
	if existing == nil || strings.TrimSpace(requirements) == "" {
		return UpdateResult{}, &ValidationError{Message: "Missing required fields: existingTasks or requirements"}
	}

	completed := make(map[string]struct{}, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = struct{}{}
	}

	pending := 0
	for _, task := range existing {
		if _, ok := completed[task.ID]; !ok {
			pending++
		}
	}
	if pending == 0 {
		return UpdateResult{Message: MessageNothingToUpdate, Tasks: existing}, nil
	}

	if err := u.completer.CheckCredentials(); err != nil {
		return UpdateResult{}, &ConfigurationError{Err: err}
	}

	// each goroutine owns exactly one index of results
	results := existing.Clone()
	var updated, failed atomic.Int32

	var g errgroup.Group
	if u.opts.Concurrency > 0 {
		g.SetLimit(u.opts.Concurrency)
	}
	for i, task := range existing {
		if _, ok := completed[task.ID]; ok {
			continue
		}
		g.Go(func() error {
			next, err := u.updateTask(ctx, task, requirements)
			if err != nil {
				failed.Add(1)
				u.logger.Warn().Err(err).Str("task_id", task.ID).Msg("failed to update task, keeping previous guidance")
				return nil
			}
			updated.Add(1)
			results[i] = next
			return nil
		})
	}
	_ = g.Wait()

	u.logger.Info().
		Int("updated", int(updated.Load())).
		Int("failed", int(failed.Load())).
		Int("skipped", len(existing)-pending).
		Msg("updated tasks")

	return UpdateResult{
		Message: MessageUpdated,
		Tasks:   results,
		Updated: int(updated.Load()),
		Failed:  int(failed.Load()),
	}, nil
}

func (u *Updater) updateTask(ctx context.Context, task model.Task, requirements string) (model.Task, error) {
	content, err := u.completer.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: updatePrompt(task, requirements)}},
		Temperature: u.opts.Temperature,
		MaxTokens:   u.opts.MaxTokens,
	})
	if err != nil {
		return task, err
	}
	if strings.TrimSpace(content) == "" {
		return task, errors.New("no content returned from upstream")
	}

	obj, err := parseObject(content)
	if err != nil {
		return task, err
	}

	task.Implementation = stringOr(obj, "implementation", task.Implementation)
	task.CodeSnippet = stringOr(obj, "codeSnippet", task.CodeSnippet)
	return task, nil
}
