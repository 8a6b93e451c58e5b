package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/teamup-api/internal/repo"
	"github.com/BuzzLyutic/teamup-api/internal/service"
	"github.com/BuzzLyutic/teamup-api/pkg/respond"
)

// handleErrors переводит sentinel-ошибки движка в HTTP-коды
func handleErrors(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrorFinished):
		respond.Error(w, r, http.StatusConflict, "task finished")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	case errors.Is(err, service.ErrPermission):
		respond.Error(w, r, http.StatusForbidden, "permission denied")
	default:
		logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
