package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"gincana-service/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const (
	codeInvalidRequest   = "invalid_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeInvalidState     = "invalid_state"
	codeQuotaExceeded    = "quota_exceeded"
	codeInternal         = "internal_error"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// respondServiceError maps the domain error kinds onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		respondError(w, http.StatusTooManyRequests, codeQuotaExceeded, err.Error())
	case errors.Is(err, domain.ErrState):
		respondError(w, http.StatusConflict, codeInvalidState, err.Error())
	default:
		logger.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON payload")
		return false
	}
	return true
}
