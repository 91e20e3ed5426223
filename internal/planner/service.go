package planner

import (
	"context"
	"sync"

	"github.com/Joseda-hg/codeplanner/internal/model"
	"github.com/Joseda-hg/codeplanner/internal/store"
)

// Service fronts the Generator and Updater and rejects overlapping calls so
// two requests never race to write back the same list.
type Service struct {
	generator *Generator
	updater   *Updater
	store     *store.Store

	inflight sync.Mutex
}

func NewService(generator *Generator, updater *Updater, st *store.Store) *Service {
	return &Service{generator: generator, updater: updater, store: st}
}

func (s *Service) Generate(ctx context.Context, description string) (model.TaskList, error) {
	if !s.inflight.TryLock() {
		return nil, ErrBusy
	}
	defer s.inflight.Unlock()

	return s.generator.Generate(ctx, description)
}

func (s *Service) Update(ctx context.Context, existing model.TaskList, completedIDs []string, requirements string) (UpdateResult, error) {
	if !s.inflight.TryLock() {
		return UpdateResult{}, ErrBusy
	}
	defer s.inflight.Unlock()

	return s.updater.Update(ctx, existing, completedIDs, requirements)
}

// GenerateAndSave generates a fresh list and replaces the stored one. Nothing
// is written when generation fails.
func (s *Service) GenerateAndSave(ctx context.Context, description string) (model.TaskList, error) {
	if !s.inflight.TryLock() {
		return nil, ErrBusy
	}
	defer s.inflight.Unlock()

	tasks, err := s.generator.Generate(ctx, description)
	if err != nil {
		return nil, err
	}
	return s.store.Replace(ctx, tasks), nil
}

// UpdateSaved updates the stored list, treating tasks marked completed as the
// completed set, and writes the result back.
func (s *Service) UpdateSaved(ctx context.Context, requirements string) (UpdateResult, error) {
	if !s.inflight.TryLock() {
		return UpdateResult{}, ErrBusy
	}
	defer s.inflight.Unlock()

	existing := s.store.Load(ctx)
	if len(existing) == 0 {
		return UpdateResult{}, &ValidationError{Message: "No existing tasks found to update"}
	}

	result, err := s.updater.Update(ctx, existing, existing.CompletedIDs(), requirements)
	if err != nil {
		return UpdateResult{}, err
	}
	result.Tasks = s.store.Replace(ctx, result.Tasks)
	return result, nil
}
