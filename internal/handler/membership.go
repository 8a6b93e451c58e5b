package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/teamup-api/internal/middleware"
	"github.com/BuzzLyutic/teamup-api/internal/service"
	"github.com/BuzzLyutic/teamup-api/pkg/respond"
)

type MembershipHandler struct {
	service *service.MembershipService
	logger  *zap.Logger
}

func NewMembershipHandler(srv *service.MembershipService, logger *zap.Logger) *MembershipHandler {
	return &MembershipHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *MembershipHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return
	}

	roles, err := h.service.ListRoles(r.Context(), taskID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, roles)
}

func (h *MembershipHandler) Claim(w http.ResponseWriter, r *http.Request) {
	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid role id")
		return
	}
	callerID, _ := middleware.UserID(r.Context())

	role, err := h.service.ClaimRole(r.Context(), roleID, callerID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	h.logger.Info("role claimed",
		zap.String("role_id", roleID.String()),
		zap.String("user_id", callerID.String()),
	)
	respond.JSON(w, r, http.StatusOK, role)
}

func (h *MembershipHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid role id")
		return
	}

	removed, err := h.service.RemoveMember(r.Context(), roleID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	h.logger.Info("member removed",
		zap.String("role_id", roleID.String()),
		zap.String("user_id", removed.String()),
	)
	respond.Success(w, r)
}

func (h *MembershipHandler) MyRoles(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.UserID(r.Context())

	roles, err := h.service.ListMine(r.Context(), callerID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, roles)
}
