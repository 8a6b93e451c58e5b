package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/teamup-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
	ErrorFinished = errors.New("task finished")
)

type TaskRepo struct { // Репозиторий задач и их жизненного цикла
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

// lockTask берет блокировку строки задачи — все мутации в рамках одной
// задачи сериализуются через нее
func lockTask(ctx context.Context, tx pgx.Tx, taskID uuid.UUID) (status string, creatorID uuid.UUID, err error) {
	err = tx.QueryRow(ctx, `
		SELECT status, creator_id FROM tasks WHERE id = $1 FOR UPDATE
	`, taskID).Scan(&status, &creatorID)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", uuid.Nil, ErrorNotFound
	}
	return status, creatorID, err
}

// Create атомарно создает задачу и ровно team_size ролей.
// Частично созданная задача не должна быть видна никогда.
func (r *TaskRepo) Create(ctx context.Context, n model.NewTask) (model.Task, error) {
	var t model.Task

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return t, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, creator_id, team_size, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'open', now())
		RETURNING id, title, description, creator_id, team_size, status, created_at
	`, uuid.New(), n.Title, n.Description, n.CreatorID, n.TeamSize).Scan(
		&t.ID, &t.Title, &t.Description, &t.CreatorID, &t.TeamSize, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		return t, mapError(err)
	}

	for i, name := range n.RoleNames {
		_, err = tx.Exec(ctx, `
			INSERT INTO task_roles (id, task_id, role_index, role_name, user_id)
			VALUES ($1, $2, $3, $4, NULL)
		`, uuid.New(), t.ID, i, name)
		if err != nil {
			return t, mapError(err)
		}
	}

	return t, tx.Commit(ctx)
}

func (r *TaskRepo) Get(ctx context.Context, id uuid.UUID) (model.Task, error) {
	var t model.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, description, creator_id, team_size, status, created_at
		FROM tasks
		WHERE id = $1
	`, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.CreatorID, &t.TeamSize, &t.Status, &t.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) GetDetails(ctx context.Context, id uuid.UUID) (model.TaskDetails, error) {
	var d model.TaskDetails
	err := r.pool.QueryRow(ctx, `
		SELECT t.id, t.title, t.description, t.creator_id, t.team_size, t.status, t.created_at,
		       COALESCE(u.name, ''), u.username
		FROM tasks t
		JOIN users u ON t.creator_id = u.id
		WHERE t.id = $1
	`, id).Scan(
		&d.ID, &d.Title, &d.Description, &d.CreatorID, &d.TeamSize, &d.Status, &d.CreatedAt,
		&d.CreatorName, &d.CreatorUsername,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return d, ErrorNotFound
	}
	return d, err
}

// ListOpen возвращает открытые задачи, новые первыми
func (r *TaskRepo) ListOpen(ctx context.Context) ([]model.TaskDetails, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.title, t.description, t.creator_id, t.team_size, t.status, t.created_at,
		       COALESCE(u.name, ''), u.username
		FROM tasks t
		JOIN users u ON t.creator_id = u.id
		WHERE t.status = 'open'
		ORDER BY t.created_at DESC, t.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.TaskDetails, 0)
	for rows.Next() {
		var d model.TaskDetails
		if err := rows.Scan(
			&d.ID, &d.Title, &d.Description, &d.CreatorID, &d.TeamSize, &d.Status, &d.CreatedAt,
			&d.CreatorName, &d.CreatorUsername,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, d)
	}
	return tasks, rows.Err()
}

// Update меняет заголовок и описание, пока задача открыта.
// Проверка, что редактирует создатель, лежит на сервисе.
func (r *TaskRepo) Update(ctx context.Context, id uuid.UUID, title, description string) (model.Task, error) {
	var t model.Task

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return t, err
	}
	defer tx.Rollback(ctx)

	status, _, err := lockTask(ctx, tx, id)
	if err != nil {
		return t, err
	}
	if status == model.StatusFinished {
		return t, ErrorFinished
	}

	err = tx.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2, description = $3
		WHERE id = $1
		RETURNING id, title, description, creator_id, team_size, status, created_at
	`, id, title, description).Scan(
		&t.ID, &t.Title, &t.Description, &t.CreatorID, &t.TeamSize, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		return t, err
	}

	return t, tx.Commit(ctx)
}

// Finish переводит задачу в терминальное состояние. Повторный вызов — конфликт.
func (r *TaskRepo) Finish(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	status, _, err := lockTask(ctx, tx, id)
	if err != nil {
		return err
	}
	if status == model.StatusFinished {
		return ErrorConflict
	}

	if _, err := tx.Exec(ctx, `UPDATE tasks SET status = 'finished' WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListPublished — задачи создателя вместе с занятыми ролями
func (r *TaskRepo) ListPublished(ctx context.Context, creatorID uuid.UUID) ([]model.PublishedTask, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, status
		FROM tasks
		WHERE creator_id = $1
		ORDER BY status ASC, created_at DESC
	`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.PublishedTask, 0)
	for rows.Next() {
		var pt model.PublishedTask
		if err := rows.Scan(&pt.ID, &pt.Title, &pt.Status); err != nil {
			return nil, err
		}
		tasks = append(tasks, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		memberRows, err := r.pool.Query(ctx, `
			SELECT tr.role_name, COALESCE(u.name, ''), u.username, COALESCE(u.email, '')
			FROM task_roles tr
			JOIN users u ON tr.user_id = u.id
			WHERE tr.task_id = $1
			ORDER BY tr.role_index
		`, tasks[i].ID)
		if err != nil {
			return nil, err
		}

		members := make([]model.MemberRole, 0)
		for memberRows.Next() {
			var m model.MemberRole
			if err := memberRows.Scan(&m.RoleName, &m.Name, &m.Username, &m.Email); err != nil {
				memberRows.Close()
				return nil, err
			}
			members = append(members, m)
		}
		memberRows.Close()
		if err := memberRows.Err(); err != nil {
			return nil, err
		}
		tasks[i].Members = members
	}

	return tasks, nil
}

type Stats struct {
	TotalTasks       int            `json:"total_tasks"`
	ByStatus         map[string]int `json:"by_status"`
	TotalRoles       int            `json:"total_roles"`
	ClaimedRoles     int            `json:"claimed_roles"`
	TotalSubTasks    int            `json:"total_sub_tasks"`
	AssignedSubTasks int            `json:"assigned_sub_tasks"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

func (r *TaskRepo) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByStatus:    make(map[string]int),
		GeneratedAt: time.Now(),
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.ByStatus[status] = count
		stats.TotalTasks += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(user_id) FROM task_roles
	`).Scan(&stats.TotalRoles, &stats.ClaimedRoles)
	if err != nil {
		return stats, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(assignee_id) FROM sub_tasks
	`).Scan(&stats.TotalSubTasks, &stats.AssignedSubTasks)

	return stats, err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return ErrorConflict
		case "23503": // foreign_key_violation
			return ErrorNotFound
		}
	}
	return err
}
