package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/teamup-api/internal/middleware"
	"github.com/BuzzLyutic/teamup-api/internal/model"
	"github.com/BuzzLyutic/teamup-api/internal/service"
	"github.com/BuzzLyutic/teamup-api/pkg/respond"
)

type SubTaskHandler struct {
	service  *service.SubTaskService
	logger   *zap.Logger
	validate *validator.Validate
}

func NewSubTaskHandler(srv *service.SubTaskService, logger *zap.Logger, validate *validator.Validate) *SubTaskHandler {
	return &SubTaskHandler{
		service:  srv,
		logger:   logger,
		validate: validate,
	}
}

type createSubTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *SubTaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return
	}
	callerID, _ := middleware.UserID(r.Context())

	var req createSubTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	subTask, err := h.service.Create(r.Context(), taskID, callerID, req.Title, req.Description, req.DueDate)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, subTask)
}

func (h *SubTaskHandler) List(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return
	}

	subTasks, err := h.service.List(r.Context(), taskID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, subTasks)
}

type updateSubTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *SubTaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "subTaskID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid sub-task id")
		return
	}
	callerID, _ := middleware.UserID(r.Context())

	var req updateSubTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	subTask, err := h.service.Update(r.Context(), id, callerID, model.SubTaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, subTask)
}

func (h *SubTaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "subTaskID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid sub-task id")
		return
	}
	callerID, _ := middleware.UserID(r.Context())

	if err := h.service.Delete(r.Context(), id, callerID); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	AssigneeID *uuid.UUID `json:"assignee_id"`
}

func (h *SubTaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "subTaskID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid sub-task id")
		return
	}
	callerID, _ := middleware.UserID(r.Context())

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	subTask, err := h.service.Assign(r.Context(), id, callerID, req.AssigneeID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, subTask)
}
