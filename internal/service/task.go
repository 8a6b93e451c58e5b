package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/teamup-api/internal/model"
	"github.com/BuzzLyutic/teamup-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
	ErrPermission = errors.New("permission denied")
)

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, n model.NewTask) (model.Task, error) {
	if err := s.validate(n); err != nil {
		return model.Task{}, err
	}
	return s.repo.Create(ctx, n)
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (model.TaskDetails, error) {
	return s.repo.GetDetails(ctx, id)
}

func (s *TaskService) ListOpen(ctx context.Context) ([]model.TaskDetails, error) {
	return s.repo.ListOpen(ctx)
}

// Update разрешено только создателю и только пока задача открыта.
// Сам статус перепроверяется атомарно в репозитории.
func (s *TaskService) Update(ctx context.Context, id, editorID uuid.UUID, title, description string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, ErrValidation
	}

	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if task.CreatorID != editorID {
		return model.Task{}, ErrPermission
	}

	return s.repo.Update(ctx, id, title, description)
}

// Finish — необратимый переход open → finished, доступен только создателю
func (s *TaskService) Finish(ctx context.Context, id, callerID uuid.UUID) error {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if task.CreatorID != callerID {
		return ErrPermission
	}

	return s.repo.Finish(ctx, id)
}

func (s *TaskService) ListPublished(ctx context.Context, creatorID uuid.UUID) ([]model.PublishedTask, error) {
	return s.repo.ListPublished(ctx, creatorID)
}

func (s *TaskService) GetStats(ctx context.Context) (repo.Stats, error) {
	return s.repo.GetStats(ctx)
}

func (s *TaskService) validate(n model.NewTask) error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrValidation
	}
	if n.CreatorID == uuid.Nil {
		return ErrValidation
	}
	if n.TeamSize < 1 {
		return ErrValidation
	}
	if len(n.RoleNames) != n.TeamSize {
		return ErrValidation
	}
	for _, name := range n.RoleNames {
		if strings.TrimSpace(name) == "" {
			return ErrValidation
		}
	}
	return nil
}
