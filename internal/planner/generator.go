package planner

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Joseda-hg/codeplanner/internal/llm"
	"github.com/Joseda-hg/codeplanner/internal/model"
)

type GeneratorOptions struct {
	Temperature float32
	MaxTokens   int
}

func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{Temperature: 0.7, MaxTokens: 4000}
}

// Generator turns a project description into an initial task list.
type Generator struct {
	completer llm.Completer
	opts      GeneratorOptions
	logger    zerolog.Logger
	now       func() time.Time
	newID     func() string
}

func NewGenerator(completer llm.Completer, opts GeneratorOptions, logger zerolog.Logger) *Generator {
	return &Generator{
		completer: completer,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

func (g *Generator) Generate(ctx context.Context, description string) (model.TaskList, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &ValidationError{Message: "Invalid prompt: must be a non-empty string"}
	}

	if err := g.completer.CheckCredentials(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	content, err := g.completer.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: generateSystemPrompt},
			{Role: llm.RoleUser, Content: description},
		},
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			return nil, &ConfigurationError{Err: err}
		}
		return nil, &UpstreamError{Op: "failed to generate tasks", Err: err}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &UpstreamError{Op: "failed to generate tasks", Err: errors.New("no content returned from upstream")}
	}

	items, err := parseArray(content)
	if err != nil {
		g.logger.Error().Err(err).Int("content_length", len(content)).Msg("failed to parse upstream task data")
		return nil, &UpstreamError{Op: "failed to parse task data", Err: err}
	}

	tasks := g.buildTasks(items)
	g.logger.Info().Int("tasks", len(tasks)).Msg("generated tasks")
	return tasks, nil
}

func (g *Generator) buildTasks(items []any) model.TaskList {
	createdAt := model.FormatTimestamp(g.now())
	seen := make(map[string]struct{}, len(items))

	tasks := make(model.TaskList, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)

		id := strings.TrimSpace(stringField(obj, "id"))
		if _, dup := seen[id]; id == "" || dup {
			id = g.newID()
		}
		seen[id] = struct{}{}

		created := stringField(obj, "createdAt")
		if !model.ValidTimestamp(created) {
			created = createdAt
		}

		tasks = append(tasks, model.Task{
			ID:             id,
			Title:          stringOr(obj, "title", model.DefaultTitle),
			Description:    stringOr(obj, "description", model.DefaultDescription),
			Implementation: stringField(obj, "implementation"),
			CodeSnippet:    stringField(obj, "codeSnippet"),
			Completed:      false,
			CreatedAt:      created,
		})
	}
	return tasks
}
