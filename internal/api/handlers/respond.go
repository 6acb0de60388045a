package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/markdave123-py/insightcart/internal/core/analysis"
	"github.com/markdave123-py/insightcart/internal/services"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	writeMessage(w, status, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNoActiveUser):
		return http.StatusUnauthorized, "login required"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrExportDisabled):
		return http.StatusNotImplemented, err.Error()
	case analysis.IsServiceFailure(err):
		return http.StatusBadGateway, services.AuditFailedMessage
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// decodeJSON reads a JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
