package model

import "github.com/google/uuid"

type Role struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"task_id"`
	RoleIndex int        `json:"role_index"`
	RoleName  string     `json:"role_name"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
}

// RoleInfo — роль с профилем владельца для выдачи (профиль хранится
// внешним сервисом, мы только читаем отображаемые поля)
type RoleInfo struct {
	Role
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// MyRole — задача и роль, которую пользователь в ней занял
type MyRole struct {
	TaskID      uuid.UUID `json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RoleName    string    `json:"role_name"`
	Status      string    `json:"status"`
}
