package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/teamup-api/internal/handler"
	"github.com/BuzzLyutic/teamup-api/internal/model"
	"github.com/BuzzLyutic/teamup-api/internal/repo"
	"github.com/BuzzLyutic/teamup-api/internal/router"
	"github.com/BuzzLyutic/teamup-api/internal/service"
)

func setupE2EServer(t *testing.T) (*httptest.Server, *pgxpool.Pool, func()) {
	pool, cleanup := SetupTestDB(t)
	TruncateTables(t, pool)

	taskRepo := repo.NewTaskRepo(pool)
	roleRepo := repo.NewRoleRepo(pool)
	subTaskRepo := repo.NewSubTaskRepo(pool)

	taskService := service.NewTaskService(taskRepo)
	membershipService := service.NewMembershipService(roleRepo)
	subTaskService := service.NewSubTaskService(subTaskRepo, taskRepo)

	logger := zap.NewNop()
	validate := validator.New()

	r := router.Setup(
		handler.NewTaskHandler(taskService, logger, validate),
		handler.NewMembershipHandler(membershipService, logger),
		handler.NewSubTaskHandler(subTaskService, logger, validate),
	)

	server := httptest.NewServer(r)

	cleanupFunc := func() {
		server.Close()
		cleanup()
	}

	return server, pool, cleanupFunc
}

// doJSON выполняет запрос от имени пользователя и декодирует ответ в out
func doJSON(t *testing.T, method, url string, caller uuid.UUID, body interface{}, out interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if caller != uuid.Nil {
		req.Header.Set("X-User-ID", caller.String())
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	} else {
		resp.Body.Close()
	}
	return resp
}

func TestE2E_TeamFormationWorkflow(t *testing.T) {
	server, pool, cleanup := setupE2EServer(t)
	defer cleanup()

	creator := SeedUser(t, pool, "creator")
	alice := SeedUser(t, pool, "alice")
	bob := SeedUser(t, pool, "bob")

	// 1. Создание задачи с двумя ролями
	var task model.Task
	resp := doJSON(t, http.MethodPost, server.URL+"/api/tasks", creator, map[string]interface{}{
		"title":       "Course project",
		"description": "Build the thing",
		"team_size":   2,
		"roles":       []string{"前端", "后端"},
	}, &task)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, model.StatusOpen, task.Status)
	assert.Equal(t, 2, task.TeamSize)

	// 2. Обе роли свободны и идут по порядку
	var roles []model.RoleInfo
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%s/roles", server.URL, task.ID), uuid.Nil, nil, &roles)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, roles, 2)
	assert.Equal(t, "前端", roles[0].RoleName)
	assert.Equal(t, "后端", roles[1].RoleName)
	assert.Nil(t, roles[0].UserID)
	assert.Nil(t, roles[1].UserID)

	// 3. Алиса занимает роль
	var claimed model.Role
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/roles/%s/claim", server.URL, roles[0].ID), alice, nil, &claimed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, claimed.UserID)
	assert.Equal(t, alice, *claimed.UserID)

	// 4. Боб опоздал - конфликт
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/roles/%s/claim", server.URL, roles[0].ID), bob, nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// 5. Создатель заводит подзадачу и назначает Алису
	var st model.SubTask
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%s/subtasks", server.URL, task.ID), creator, map[string]interface{}{
		"title": "API design",
	}, &st)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/subtasks/%s/assignee", server.URL, st.ID), creator, map[string]interface{}{
		"assignee_id": alice,
	}, &st)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, st.AssigneeID)
	assert.Equal(t, alice, *st.AssigneeID)

	// 6. Назначение не-участника отклоняется
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/subtasks/%s/assignee", server.URL, st.ID), creator, map[string]interface{}{
		"assignee_id": bob,
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// 7. Удаление Алисы из команды каскадно снимает назначение
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/roles/%s/remove_member", server.URL, roles[0].ID), creator, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var subTasks []model.SubTaskDetails
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%s/subtasks", server.URL, task.ID), uuid.Nil, nil, &subTasks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, subTasks, 1)
	assert.Nil(t, subTasks[0].AssigneeID)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%s/roles", server.URL, task.ID), uuid.Nil, nil, &roles)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, roles[0].UserID)
}

func TestE2E_LifecycleGate(t *testing.T) {
	server, pool, cleanup := setupE2EServer(t)
	defer cleanup()

	creator := SeedUser(t, pool, "creator")
	alice := SeedUser(t, pool, "alice")
	carol := SeedUser(t, pool, "carol")

	var task model.Task
	resp := doJSON(t, http.MethodPost, server.URL+"/api/tasks", creator, map[string]interface{}{
		"title":     "Short project",
		"team_size": 1,
		"roles":     []string{"dev"},
	}, &task)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var roles []model.RoleInfo
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%s/roles", server.URL, task.ID), uuid.Nil, nil, &roles)
	require.Len(t, roles, 1)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/roles/%s/claim", server.URL, roles[0].ID), alice, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Завершить может только создатель
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%s/finish", server.URL, task.ID), alice, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%s/finish", server.URL, task.ID), creator, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Повторное завершение - конфликт
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%s/finish", server.URL, task.ID), creator, nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Все мутации закрыты
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/roles/%s/claim", server.URL, roles[0].ID), carol, nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/roles/%s/remove_member", server.URL, roles[0].ID), creator, nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/api/tasks/%s", server.URL, task.ID), creator, map[string]interface{}{
		"title": "renamed",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/tasks/%s/subtasks", server.URL, task.ID), creator, map[string]interface{}{
		"title": "late sub-task",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Чтение живо, прежний владелец роли виден
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%s/roles", server.URL, task.ID), uuid.Nil, nil, &roles)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, roles[0].UserID)
	assert.Equal(t, alice, *roles[0].UserID)

	// Завершенная задача уходит из общего списка
	var open []model.TaskDetails
	resp = doJSON(t, http.MethodGet, server.URL+"/api/tasks", uuid.Nil, nil, &open)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, open)
}

func TestE2E_ValidationAndIdentity(t *testing.T) {
	server, pool, cleanup := setupE2EServer(t)
	defer cleanup()

	creator := SeedUser(t, pool, "creator")

	// Без X-User-ID мутации закрыты
	resp := doJSON(t, http.MethodPost, server.URL+"/api/tasks", uuid.Nil, map[string]interface{}{
		"title":     "No identity",
		"team_size": 1,
		"roles":     []string{"dev"},
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Несовпадение team_size и числа ролей
	resp = doJSON(t, http.MethodPost, server.URL+"/api/tasks", creator, map[string]interface{}{
		"title":     "Bad roles",
		"team_size": 3,
		"roles":     []string{"dev"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Нулевой размер команды
	resp = doJSON(t, http.MethodPost, server.URL+"/api/tasks", creator, map[string]interface{}{
		"title":     "Empty team",
		"team_size": 0,
		"roles":     []string{},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Несуществующая задача
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%s", server.URL, uuid.New()), uuid.Nil, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestE2E_MyViewsAndStats(t *testing.T) {
	server, pool, cleanup := setupE2EServer(t)
	defer cleanup()

	creator := SeedUser(t, pool, "creator")
	alice := SeedUser(t, pool, "alice")

	var task model.Task
	resp := doJSON(t, http.MethodPost, server.URL+"/api/tasks", creator, map[string]interface{}{
		"title":     "Visible project",
		"team_size": 2,
		"roles":     []string{"前端", "后端"},
	}, &task)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var roles []model.RoleInfo
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/tasks/%s/roles", server.URL, task.ID), uuid.Nil, nil, &roles)
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/roles/%s/claim", server.URL, roles[1].ID), alice, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Мои роли
	var mine []model.MyRole
	resp = doJSON(t, http.MethodGet, server.URL+"/api/my/roles", alice, nil, &mine)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, mine, 1)
	assert.Equal(t, "后端", mine[0].RoleName)
	assert.Equal(t, "Visible project", mine[0].Title)

	// Мои опубликованные задачи с составом команды
	var published []model.PublishedTask
	resp = doJSON(t, http.MethodGet, server.URL+"/api/my/published", creator, nil, &published)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, published, 1)
	require.Len(t, published[0].Members, 1)
	assert.Equal(t, "后端", published[0].Members[0].RoleName)

	// Статистика
	var stats repo.Stats
	resp = doJSON(t, http.MethodGet, server.URL+"/api/stats", uuid.Nil, nil, &stats)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stats.TotalTasks)
	assert.Equal(t, 2, stats.TotalRoles)
	assert.Equal(t, 1, stats.ClaimedRoles)
}
