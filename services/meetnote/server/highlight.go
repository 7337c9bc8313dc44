package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Theagentvikram/MeetNote/pkg/json"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

func (s *Server) CreateHighlightHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	var req entity.CreateHighlightRequest
	if err := json.ParseJSON(r, &req); err != nil {
		json.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	highlight, err := s.usecase.CreateHighlight(r.Context(), user.ID, chi.URLParam(r, "meeting_id"), &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, highlight)
}

func (s *Server) ListHighlightsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	highlights, err := s.usecase.ListHighlights(r.Context(), user.ID, chi.URLParam(r, "meeting_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, highlights)
}
