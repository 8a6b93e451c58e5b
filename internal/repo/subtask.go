package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/teamup-api/internal/model"
)

type SubTaskRepo struct { // Доска подзадач и их назначений
	pool *pgxpool.Pool
}

func NewSubTaskRepo(pool *pgxpool.Pool) *SubTaskRepo {
	return &SubTaskRepo{
		pool: pool,
	}
}

func (r *SubTaskRepo) Create(ctx context.Context, taskID uuid.UUID, title, description string, dueDate *time.Time) (model.SubTask, error) {
	var st model.SubTask

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return st, err
	}
	defer tx.Rollback(ctx)

	status, _, err := lockTask(ctx, tx, taskID)
	if err != nil {
		return st, err
	}
	if status == model.StatusFinished {
		return st, ErrorFinished
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO sub_tasks (id, task_id, title, description, status, due_date, created_at)
		VALUES ($1, $2, $3, $4, 'pending', $5, now())
		RETURNING id, task_id, title, description, status, assignee_id, due_date, created_at
	`, uuid.New(), taskID, title, description, dueDate).Scan(
		&st.ID, &st.TaskID, &st.Title, &st.Description, &st.Status, &st.AssigneeID, &st.DueDate, &st.CreatedAt,
	)
	if err != nil {
		return st, err
	}

	return st, tx.Commit(ctx)
}

func (r *SubTaskRepo) Get(ctx context.Context, id uuid.UUID) (model.SubTask, error) {
	var st model.SubTask
	err := r.pool.QueryRow(ctx, `
		SELECT id, task_id, title, description, status, assignee_id, due_date, created_at
		FROM sub_tasks
		WHERE id = $1
	`, id).Scan(
		&st.ID, &st.TaskID, &st.Title, &st.Description, &st.Status, &st.AssigneeID, &st.DueDate, &st.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return st, ErrorNotFound
	}
	return st, err
}

func (r *SubTaskRepo) List(ctx context.Context, taskID uuid.UUID) ([]model.SubTaskDetails, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, taskID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrorNotFound
	}

	rows, err := r.pool.Query(ctx, `
		SELECT st.id, st.task_id, st.title, st.description, st.status,
		       st.assignee_id, st.due_date, st.created_at,
		       COALESCE(u.name, u.username) AS assignee_name
		FROM sub_tasks st
		LEFT JOIN users u ON st.assignee_id = u.id
		WHERE st.task_id = $1
		ORDER BY st.created_at ASC, st.id ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subTasks := make([]model.SubTaskDetails, 0)
	for rows.Next() {
		var d model.SubTaskDetails
		if err := rows.Scan(
			&d.ID, &d.TaskID, &d.Title, &d.Description, &d.Status,
			&d.AssigneeID, &d.DueDate, &d.CreatedAt, &d.AssigneeName,
		); err != nil {
			return nil, err
		}
		subTasks = append(subTasks, d)
	}
	return subTasks, rows.Err()
}

// Update применяет частичное обновление полей, nil-поля не трогает
func (r *SubTaskRepo) Update(ctx context.Context, id uuid.UUID, upd model.SubTaskUpdate) (model.SubTask, error) {
	var st model.SubTask

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return st, err
	}
	defer tx.Rollback(ctx)

	taskID, err := r.taskOf(ctx, tx, id)
	if err != nil {
		return st, err
	}

	status, _, err := lockTask(ctx, tx, taskID)
	if err != nil {
		return st, err
	}
	if status == model.StatusFinished {
		return st, ErrorFinished
	}

	err = tx.QueryRow(ctx, `
		UPDATE sub_tasks
		SET title       = COALESCE($2, title),
		    description = COALESCE($3, description),
		    status      = COALESCE($4, status),
		    due_date    = COALESCE($5, due_date)
		WHERE id = $1
		RETURNING id, task_id, title, description, status, assignee_id, due_date, created_at
	`, id, upd.Title, upd.Description, upd.Status, upd.DueDate).Scan(
		&st.ID, &st.TaskID, &st.Title, &st.Description, &st.Status, &st.AssigneeID, &st.DueDate, &st.CreatedAt,
	)
	if err != nil {
		return st, err
	}

	return st, tx.Commit(ctx)
}

func (r *SubTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	taskID, err := r.taskOf(ctx, tx, id)
	if err != nil {
		return err
	}

	status, _, err := lockTask(ctx, tx, taskID)
	if err != nil {
		return err
	}
	if status == model.StatusFinished {
		return ErrorFinished
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM sub_tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}

	return tx.Commit(ctx)
}

// Assign назначает подзадачу текущему участнику команды или снимает
// назначение (assignee == nil). Проверка членства идет в той же
// транзакции, что и запись, поэтому гонка с удалением участника
// разрешается детерминированно.
func (r *SubTaskRepo) Assign(ctx context.Context, id uuid.UUID, assignee *uuid.UUID) (model.SubTask, error) {
	var st model.SubTask

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return st, err
	}
	defer tx.Rollback(ctx)

	taskID, err := r.taskOf(ctx, tx, id)
	if err != nil {
		return st, err
	}

	status, _, err := lockTask(ctx, tx, taskID)
	if err != nil {
		return st, err
	}
	if status == model.StatusFinished {
		return st, ErrorFinished
	}

	if assignee != nil {
		var isMember bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM task_roles WHERE task_id = $1 AND user_id = $2)
		`, taskID, *assignee).Scan(&isMember)
		if err != nil {
			return st, err
		}
		if !isMember {
			return st, ErrorConflict
		}
	}

	err = tx.QueryRow(ctx, `
		UPDATE sub_tasks
		SET assignee_id = $2
		WHERE id = $1
		RETURNING id, task_id, title, description, status, assignee_id, due_date, created_at
	`, id, assignee).Scan(
		&st.ID, &st.TaskID, &st.Title, &st.Description, &st.Status, &st.AssigneeID, &st.DueDate, &st.CreatedAt,
	)
	if err != nil {
		return st, err
	}

	return st, tx.Commit(ctx)
}

func (r *SubTaskRepo) taskOf(ctx context.Context, tx pgx.Tx, subTaskID uuid.UUID) (uuid.UUID, error) {
	var taskID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT task_id FROM sub_tasks WHERE id = $1`, subTaskID).Scan(&taskID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrorNotFound
	}
	return taskID, err
}
