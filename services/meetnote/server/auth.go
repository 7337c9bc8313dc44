package server

import (
	"fmt"
	"net/http"

	"github.com/Theagentvikram/MeetNote/pkg/json"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req entity.RegisterRequest
	if err := json.ParseJSON(r, &req); err != nil {
		json.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	token, err := s.usecase.Register(r.Context(), &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, token)
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if err := json.ParseJSON(r, &req); err != nil {
		json.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	token, err := s.usecase.Login(r.Context(), &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, token)
}

func (s *Server) MeHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		json.WriteError(w, http.StatusUnauthorized, fmt.Errorf("could not validate credentials"))
		return
	}
	json.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		json.WriteError(w, http.StatusUnauthorized, fmt.Errorf("could not validate credentials"))
		return
	}

	if err := s.usecase.DeleteAccount(r.Context(), user.ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}
