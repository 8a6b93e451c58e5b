package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/teamup-api/internal/model"
)

type RoleRepo struct { // Реестр ролей: кто какой слот в команде занял
	pool *pgxpool.Pool
}

func NewRoleRepo(pool *pgxpool.Pool) *RoleRepo {
	return &RoleRepo{
		pool: pool,
	}
}

func (r *RoleRepo) List(ctx context.Context, taskID uuid.UUID) ([]model.RoleInfo, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, taskID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrorNotFound
	}

	rows, err := r.pool.Query(ctx, `
		SELECT tr.id, tr.task_id, tr.role_index, tr.role_name, tr.user_id,
		       u.name, u.username, u.email
		FROM task_roles tr
		LEFT JOIN users u ON tr.user_id = u.id
		WHERE tr.task_id = $1
		ORDER BY tr.role_index
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]model.RoleInfo, 0)
	for rows.Next() {
		var ri model.RoleInfo
		if err := rows.Scan(
			&ri.ID, &ri.TaskID, &ri.RoleIndex, &ri.RoleName, &ri.UserID,
			&ri.Name, &ri.Username, &ri.Email,
		); err != nil {
			return nil, err
		}
		roles = append(roles, ri)
	}
	return roles, rows.Err()
}

// Claim занимает роль за пользователем. Все проверки идут под блокировкой
// строки задачи, поэтому из двух одновременных заявок на одну роль
// выигрывает ровно одна.
func (r *RoleRepo) Claim(ctx context.Context, roleID, userID uuid.UUID) (model.Role, error) {
	var role model.Role

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return role, err
	}
	defer tx.Rollback(ctx)

	var taskID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT task_id FROM task_roles WHERE id = $1`, roleID).Scan(&taskID)
	if errors.Is(err, pgx.ErrNoRows) {
		return role, ErrorNotFound
	}
	if err != nil {
		return role, err
	}

	status, _, err := lockTask(ctx, tx, taskID)
	if err != nil {
		return role, err
	}
	if status == model.StatusFinished {
		return role, ErrorFinished
	}

	// Перечитываем роль уже под блокировкой
	var claimant *uuid.UUID
	err = tx.QueryRow(ctx, `SELECT user_id FROM task_roles WHERE id = $1`, roleID).Scan(&claimant)
	if err != nil {
		return role, err
	}
	if claimant != nil {
		return role, ErrorConflict
	}

	var alreadyMember bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM task_roles WHERE task_id = $1 AND user_id = $2)
	`, taskID, userID).Scan(&alreadyMember)
	if err != nil {
		return role, err
	}
	if alreadyMember {
		return role, ErrorConflict
	}

	err = tx.QueryRow(ctx, `
		UPDATE task_roles
		SET user_id = $2
		WHERE id = $1
		RETURNING id, task_id, role_index, role_name, user_id
	`, roleID, userID).Scan(&role.ID, &role.TaskID, &role.RoleIndex, &role.RoleName, &role.UserID)
	if err != nil {
		return role, err
	}

	return role, tx.Commit(ctx)
}

// RemoveMember освобождает все роли владельца указанной роли в рамках
// задачи и одним коммитом снимает его со всех подзадач. Частичный
// результат снаружи не виден. Возвращает id удаленного участника.
func (r *RoleRepo) RemoveMember(ctx context.Context, roleID uuid.UUID) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	var taskID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT task_id FROM task_roles WHERE id = $1`, roleID).Scan(&taskID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrorNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}

	status, _, err := lockTask(ctx, tx, taskID)
	if err != nil {
		return uuid.Nil, err
	}
	if status == model.StatusFinished {
		return uuid.Nil, ErrorFinished
	}

	var claimant *uuid.UUID
	err = tx.QueryRow(ctx, `SELECT user_id FROM task_roles WHERE id = $1`, roleID).Scan(&claimant)
	if err != nil {
		return uuid.Nil, err
	}
	if claimant == nil {
		return uuid.Nil, ErrorConflict // роль и так свободна
	}

	_, err = tx.Exec(ctx, `
		UPDATE task_roles SET user_id = NULL WHERE task_id = $1 AND user_id = $2
	`, taskID, *claimant)
	if err != nil {
		return uuid.Nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE sub_tasks SET assignee_id = NULL WHERE task_id = $1 AND assignee_id = $2
	`, taskID, *claimant)
	if err != nil {
		return uuid.Nil, err
	}

	return *claimant, tx.Commit(ctx)
}

// ListMine — все занятые пользователем роли по всем задачам, открытые первыми
func (r *RoleRepo) ListMine(ctx context.Context, userID uuid.UUID) ([]model.MyRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.title, t.description, tr.role_name, t.status
		FROM task_roles tr
		JOIN tasks t ON tr.task_id = t.id
		WHERE tr.user_id = $1
		ORDER BY t.status DESC, t.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]model.MyRole, 0)
	for rows.Next() {
		var mr model.MyRole
		if err := rows.Scan(&mr.TaskID, &mr.Title, &mr.Description, &mr.RoleName, &mr.Status); err != nil {
			return nil, err
		}
		roles = append(roles, mr)
	}
	return roles, rows.Err()
}
