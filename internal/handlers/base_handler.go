package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pairlingua/backend/internal/apperrors"
	"go.uber.org/zap"
)

// BaseHandler carries the response helpers shared by all handlers
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// RespondServiceError maps a service error onto an HTTP status.
// Internal errors are logged and their cause is not echoed to the client.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error, logMessage string) {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		h.RespondError(w, http.StatusNotFound, err.Error())
	case apperrors.KindValidation:
		h.RespondError(w, http.StatusBadRequest, err.Error())
	case apperrors.KindConflict:
		h.RespondError(w, http.StatusConflict, err.Error())
	default:
		h.Logger.Error(logMessage, zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
