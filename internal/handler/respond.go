package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/lovejourney/internal/couple"
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// writeServiceError maps couple error kinds to statuses. Anything else is
// logged and reported as a 500 with fallback as the message.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, couple.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, couple.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, couple.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, couple.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		logger.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
