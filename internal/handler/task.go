package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/teamup-api/internal/middleware"
	"github.com/BuzzLyutic/teamup-api/internal/model"
	"github.com/BuzzLyutic/teamup-api/internal/service"
	"github.com/BuzzLyutic/teamup-api/pkg/respond"
)

type TaskHandler struct {
	service  *service.TaskService
	logger   *zap.Logger
	validate *validator.Validate
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger, validate *validator.Validate) *TaskHandler {
	return &TaskHandler{
		service:  srv,
		logger:   logger,
		validate: validate,
	}
}

type createTaskRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	TeamSize    int      `json:"team_size" validate:"required,min=1"`
	Roles       []string `json:"roles" validate:"required,min=1,dive,required"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.Create(r.Context(), model.NewTask{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   callerID,
		TeamSize:    req.TeamSize,
		RoleNames:   req.Roles,
	})
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%s", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListOpen(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

type updateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return
	}
	callerID, _ := middleware.UserID(r.Context())

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.Update(r.Context(), id, callerID, req.Title, req.Description)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return
	}
	callerID, _ := middleware.UserID(r.Context())

	if err := h.service.Finish(r.Context(), id, callerID); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.Success(w, r)
}

func (h *TaskHandler) Published(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())

	tasks, err := h.service.ListPublished(r.Context(), callerID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}
