package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Theagentvikram/MeetNote/pkg/json"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses. Errors
// outside the taxonomy become a generic 500 so internals never leak.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrValidation), errors.Is(err, entity.ErrDuplicateEmail):
		json.WriteError(w, http.StatusBadRequest, err)
	case errors.Is(err, entity.ErrInvalidCredentials):
		json.WriteError(w, http.StatusUnauthorized, err)
	case errors.Is(err, entity.ErrNotFound):
		json.WriteError(w, http.StatusNotFound, fmt.Errorf("not found"))
	case errors.Is(err, entity.ErrAlreadyProcessing):
		json.WriteError(w, http.StatusConflict, err)
	default:
		s.log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		json.WriteError(w, http.StatusInternalServerError, fmt.Errorf("internal server error"))
	}
}
