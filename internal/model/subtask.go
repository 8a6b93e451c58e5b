package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubTaskStatusPending = "pending"
	SubTaskStatusOverdue = "overdue"
)

type SubTask struct {
	ID          uuid.UUID  `json:"id"`
	TaskID      uuid.UUID  `json:"task_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SubTaskDetails struct {
	SubTask
	AssigneeName *string `json:"assignee_name,omitempty"`
}

// SubTaskUpdate — частичное обновление: nil-поля не трогаем
type SubTaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
}
