package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/teamup-api/internal/model"
)

// TaskRepository определяет интерфейс реестра задач и их жизненного цикла
type TaskRepository interface {
	Create(ctx context.Context, n model.NewTask) (model.Task, error)
	Get(ctx context.Context, id uuid.UUID) (model.Task, error)
	GetDetails(ctx context.Context, id uuid.UUID) (model.TaskDetails, error)
	ListOpen(ctx context.Context) ([]model.TaskDetails, error)
	Update(ctx context.Context, id uuid.UUID, title, description string) (model.Task, error)
	Finish(ctx context.Context, id uuid.UUID) error
	ListPublished(ctx context.Context, creatorID uuid.UUID) ([]model.PublishedTask, error)
	GetStats(ctx context.Context) (Stats, error)
}

// RoleRepository — реестр ролей и членство в командах
type RoleRepository interface {
	List(ctx context.Context, taskID uuid.UUID) ([]model.RoleInfo, error)
	Claim(ctx context.Context, roleID, userID uuid.UUID) (model.Role, error)
	RemoveMember(ctx context.Context, roleID uuid.UUID) (uuid.UUID, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]model.MyRole, error)
}

// SubTaskRepository — доска подзадач
type SubTaskRepository interface {
	Create(ctx context.Context, taskID uuid.UUID, title, description string, dueDate *time.Time) (model.SubTask, error)
	Get(ctx context.Context, id uuid.UUID) (model.SubTask, error)
	List(ctx context.Context, taskID uuid.UUID) ([]model.SubTaskDetails, error)
	Update(ctx context.Context, id uuid.UUID, upd model.SubTaskUpdate) (model.SubTask, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Assign(ctx context.Context, id uuid.UUID, assignee *uuid.UUID) (model.SubTask, error)
}
