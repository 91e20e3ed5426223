// Package store holds the authoritative task list and persists it wholesale
// into a single named slot.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Joseda-hg/codeplanner/internal/model"
)

const DefaultKey = "todos"

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidTitle = errors.New("title must not be empty")
)

// Store reads and writes the full task list on every operation. Mutations
// within one process are serialized; concurrent writers in other processes
// are not coordinated and the last write wins.
type Store struct {
	slots  Slots
	key    string
	logger zerolog.Logger
	now    func() time.Time

	mu sync.Mutex
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(slots Slots, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		slots:  slots,
		key:    DefaultKey,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Key() string {
	return s.key
}

// Load returns the persisted list. A missing or unreadable slot yields an
// empty list; the failure is logged.
func (s *Store) Load(ctx context.Context) model.TaskList {
	data, err := s.slots.Read(ctx, s.key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error().Err(err).Str("slot", s.key).Msg("failed to read task list")
		}
		return model.TaskList{}
	}

	var raw model.TaskList
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Error().Err(err).Str("slot", s.key).Msg("failed to parse task list")
		return model.TaskList{}
	}

	tasks := make(model.TaskList, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, task := range raw {
		if strings.TrimSpace(task.ID) == "" {
			s.logger.Warn().Int("index", i).Msg("dropping stored task without id")
			continue
		}
		if _, ok := seen[task.ID]; ok {
			s.logger.Warn().Str("task_id", task.ID).Msg("dropping stored task with duplicate id")
			continue
		}
		seen[task.ID] = struct{}{}
		tasks = append(tasks, task)
	}
	return tasks
}

// Save persists list. Failures are logged and never returned, so the caller's
// in-memory list and the stored list may diverge.
func (s *Store) Save(ctx context.Context, list model.TaskList) {
	if list == nil {
		list = model.TaskList{}
	}

	data, err := json.Marshal(list)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode task list")
		return
	}

	if err := s.slots.Write(ctx, s.key, data); err != nil {
		s.logger.Error().Err(err).Str("slot", s.key).Int("tasks", len(list)).Msg("failed to persist task list")
	}
}

func (s *Store) Get(ctx context.Context, id string) (model.Task, error) {
	tasks := s.Load(ctx)
	idx := tasks.Index(id)
	if idx < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	return tasks[idx], nil
}

// Replace overwrites the stored list, typically with Generator or Updater output.
func (s *Store) Replace(ctx context.Context, list model.TaskList) model.TaskList {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := list.Clone()
	if next == nil {
		next = model.TaskList{}
	}
	s.Save(ctx, next)
	return next
}

func (s *Store) ToggleCompleted(ctx context.Context, id string) (model.TaskList, error) {
	return s.mutate(ctx, id, func(tasks model.TaskList, idx int) model.TaskList {
		tasks[idx].Completed = !tasks[idx].Completed
		return tasks
	})
}

func (s *Store) Delete(ctx context.Context, id string) (model.TaskList, error) {
	return s.mutate(ctx, id, func(tasks model.TaskList, idx int) model.TaskList {
		return append(tasks[:idx], tasks[idx+1:]...)
	})
}

// Edit sets title and description and stamps updatedAt.
func (s *Store) Edit(ctx context.Context, id, title, description string) (model.TaskList, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	return s.mutate(ctx, id, func(tasks model.TaskList, idx int) model.TaskList {
		tasks[idx].Title = title
		tasks[idx].Description = description
		tasks[idx].UpdatedAt = model.FormatTimestamp(s.now())
		return tasks
	})
}

func (s *Store) mutate(ctx context.Context, id string, apply func(model.TaskList, int) model.TaskList) (model.TaskList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.Load(ctx)
	idx := tasks.Index(id)
	if idx < 0 {
		return tasks, ErrTaskNotFound
	}

	tasks = apply(tasks, idx)
	s.Save(ctx, tasks)
	return tasks, nil
}
