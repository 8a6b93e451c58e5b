package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOpen     = "open"
	StatusFinished = "finished"
)

type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatorID   uuid.UUID `json:"creator_id"`
	TeamSize    int       `json:"team_size"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskDetails — задача с данными создателя для выдачи в списках
type TaskDetails struct {
	Task
	CreatorName     string `json:"creator_name"`
	CreatorUsername string `json:"creator_username"`
}

// NewTask — входные данные для атомарного создания задачи вместе с ролями
type NewTask struct {
	Title       string
	Description string
	CreatorID   uuid.UUID
	TeamSize    int
	RoleNames   []string
}

type PublishedTask struct {
	ID      uuid.UUID    `json:"id"`
	Title   string       `json:"title"`
	Status  string       `json:"status"`
	Members []MemberRole `json:"members"`
}

type MemberRole struct {
	RoleName string `json:"role_name"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
