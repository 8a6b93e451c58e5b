package tests

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupTestDB создает тестовую БД с помощью testcontainers
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	ctx := context.Background()

	// Находим путь к миграциям
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filename))
	migrationsPath := filepath.Join(projectRoot, "migrations")

	// Создаем PostgreSQL контейнер
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithInitScripts(filepath.Join(migrationsPath, "001_init.up.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// TruncateTables очищает все таблицы
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, "TRUNCATE sub_tasks, task_roles, tasks, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SeedUser создает тестового пользователя (identity-сервис вне этого
// ядра, поэтому в тестах заводим записи напрямую)
func SeedUser(t *testing.T, pool *pgxpool.Pool, username string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	id := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, username, name, created_at)
		VALUES ($1, $2, $3, now())
	`, id, username, "Test "+username)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return id
}

// SeedTask создает задачу с ролями и возвращает id задачи и ролей
// в порядке role_index
func SeedTask(t *testing.T, pool *pgxpool.Pool, creatorID uuid.UUID, roleNames []string) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	taskID := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO tasks (id, title, description, creator_id, team_size, status, created_at)
		VALUES ($1, $2, '', $3, $4, 'open', now())
	`, taskID, fmt.Sprintf("Task %s", taskID.String()[:8]), creatorID, len(roleNames))
	if err != nil {
		t.Fatalf("Failed to seed task: %v", err)
	}

	roleIDs := make([]uuid.UUID, 0, len(roleNames))
	for i, name := range roleNames {
		roleID := uuid.New()
		_, err := pool.Exec(ctx, `
			INSERT INTO task_roles (id, task_id, role_index, role_name, user_id)
			VALUES ($1, $2, $3, $4, NULL)
		`, roleID, taskID, i, name)
		if err != nil {
			t.Fatalf("Failed to seed role: %v", err)
		}
		roleIDs = append(roleIDs, roleID)
	}

	return taskID, roleIDs
}

// WaitForCondition ждет выполнения условия с таймаутом
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}
