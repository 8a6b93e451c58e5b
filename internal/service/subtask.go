package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/teamup-api/internal/model"
	"github.com/BuzzLyutic/teamup-api/internal/repo"
)

type SubTaskService struct {
	subTasks repo.SubTaskRepository
	tasks    repo.TaskRepository
}

func NewSubTaskService(subTasks repo.SubTaskRepository, tasks repo.TaskRepository) *SubTaskService {
	return &SubTaskService{
		subTasks: subTasks,
		tasks:    tasks,
	}
}

func (s *SubTaskService) Create(ctx context.Context, taskID, editorID uuid.UUID, title, description string, dueDate *time.Time) (model.SubTask, error) {
	if strings.TrimSpace(title) == "" {
		return model.SubTask{}, ErrValidation
	}
	if err := s.requireCreatorOfTask(ctx, taskID, editorID); err != nil {
		return model.SubTask{}, err
	}
	return s.subTasks.Create(ctx, taskID, title, description, dueDate)
}

func (s *SubTaskService) List(ctx context.Context, taskID uuid.UUID) ([]model.SubTaskDetails, error) {
	return s.subTasks.List(ctx, taskID)
}

func (s *SubTaskService) Update(ctx context.Context, id, editorID uuid.UUID, upd model.SubTaskUpdate) (model.SubTask, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return model.SubTask{}, ErrValidation
	}
	if err := s.requireCreator(ctx, id, editorID); err != nil {
		return model.SubTask{}, err
	}
	return s.subTasks.Update(ctx, id, upd)
}

func (s *SubTaskService) Delete(ctx context.Context, id, editorID uuid.UUID) error {
	if err := s.requireCreator(ctx, id, editorID); err != nil {
		return err
	}
	return s.subTasks.Delete(ctx, id)
}

// Assign назначает подзадачу участнику команды, nil снимает назначение.
// Членство проверяется в репозитории в одной транзакции с записью.
func (s *SubTaskService) Assign(ctx context.Context, id, editorID uuid.UUID, assignee *uuid.UUID) (model.SubTask, error) {
	if err := s.requireCreator(ctx, id, editorID); err != nil {
		return model.SubTask{}, err
	}
	return s.subTasks.Assign(ctx, id, assignee)
}

func (s *SubTaskService) requireCreator(ctx context.Context, subTaskID, editorID uuid.UUID) error {
	st, err := s.subTasks.Get(ctx, subTaskID)
	if err != nil {
		return err
	}
	return s.requireCreatorOfTask(ctx, st.TaskID, editorID)
}

// Создатель задачи неизменяем, поэтому проверку можно делать вне
// транзакции репозитория
func (s *SubTaskService) requireCreatorOfTask(ctx context.Context, taskID, editorID uuid.UUID) error {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if task.CreatorID != editorID {
		return ErrPermission
	}
	return nil
}
