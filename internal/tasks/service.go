package tasks

import (
	"context"
	"log/slog"
)

// Service exposes the task operations and enforces field constraints before
// any write reaches the repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create stores a new task and returns its id.
func (s *Service) Create(ctx context.Context, in TaskInput) (int64, error) {
	if err := ValidateInput(in); err != nil {
		return 0, err
	}
	t, err := s.repo.Create(ctx, in)
	if err != nil {
		return 0, err
	}
	s.logger.DebugContext(ctx, "task_created", slog.Int64("id", t.ID))
	return t.ID, nil
}

func (s *Service) List(ctx context.Context) ([]Task, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Task, error) {
	return s.repo.Get(ctx, id)
}

// Update replaces both mutable fields of an existing task.
func (s *Service) Update(ctx context.Context, id int64, in TaskInput) error {
	if err := ValidateInput(in); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, in); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "task_updated", slog.Int64("id", id))
	return nil
}

// Delete removes the task if present. Deleting an unknown id is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "task_deleted", slog.Int64("id", id))
	return nil
}

// BulkCreate validates every input before persisting any of them and
// returns the assigned ids in input order.
func (s *Service) BulkCreate(ctx context.Context, ins []TaskInput) ([]int64, error) {
	if err := ValidateBatch(ins); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateMany(ctx, ins)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(created))
	for i, t := range created {
		ids[i] = t.ID
	}
	s.logger.DebugContext(ctx, "tasks_bulk_created", slog.Int("count", len(ids)))
	return ids, nil
}

// BulkDelete removes every task whose id is listed; unknown ids are ignored.
func (s *Service) BulkDelete(ctx context.Context, ids []int64) error {
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "tasks_bulk_deleted",
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", n),
	)
	return nil
}
