package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Theagentvikram/MeetNote/pkg/json"
	"github.com/Theagentvikram/MeetNote/services/meetnote/consts"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

func (s *Server) CreateMeetingHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	var req entity.CreateMeetingRequest
	if err := json.ParseJSON(r, &req); err != nil {
		json.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	meeting, err := s.usecase.CreateMeeting(r.Context(), user.ID, &req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, meeting)
}

func (s *Server) ListMeetingsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	meetings, err := s.usecase.ListMeetings(r.Context(), user.ID, limit, offset)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, meetings)
}

func (s *Server) GetMeetingHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	meeting, err := s.usecase.GetMeeting(r.Context(), user.ID, chi.URLParam(r, "meeting_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, meeting)
}

func (s *Server) DeleteMeetingHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if err := s.usecase.DeleteMeeting(r.Context(), user.ID, chi.URLParam(r, "meeting_id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, map[string]string{"message": "Meeting deleted"})
}

func (s *Server) UploadAudioHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	meetingID := chi.URLParam(r, "meeting_id")

	maxSize := s.cfg.MaxAudioSize
	if maxSize <= 0 {
		maxSize = consts.MaxAudioSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	file, header, err := r.FormFile("audio")
	if err != nil {
		json.WriteError(w, http.StatusBadRequest, fmt.Errorf("audio file is required"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		json.WriteError(w, http.StatusBadRequest, fmt.Errorf("failed to read audio file"))
		return
	}

	result, err := s.usecase.UploadAudio(r.Context(), user.ID, meetingID, header.Filename, audio)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) StopMeetingHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	meeting, err := s.usecase.StopMeeting(r.Context(), user.ID, chi.URLParam(r, "meeting_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	json.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Meeting stopped successfully",
		"meeting": meeting,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
