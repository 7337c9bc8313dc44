package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	config "github.com/Theagentvikram/MeetNote/config/meetnote"
	"github.com/Theagentvikram/MeetNote/pkg/jwt"
	"github.com/Theagentvikram/MeetNote/services/meetnote/clients/openrouter"
	"github.com/Theagentvikram/MeetNote/services/meetnote/clients/whisper"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
	"github.com/Theagentvikram/MeetNote/services/meetnote/storage/memory"
	"github.com/Theagentvikram/MeetNote/services/meetnote/usecase"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		RecordingsDir: t.TempDir(),
		MaxAudioSize:  25_000_000,
		CORSOrigins:   []string{"http://localhost:3000"},
	}
	usc := usecase.New(cfg, memory.New(nil),
		whisper.New("", "", "base", "cpu", "int8", nil),
		openrouter.New("", "https://openrouter.ai/api/v1", "test-model", nil))

	ts := httptest.NewServer(New(cfg, usc, nil).Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func registerAndLogin(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"email": email, "password": "password123", "name": "Test User",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register returned %d", resp.StatusCode)
	}
	var token entity.TokenResponse
	decodeBody(t, resp, &token)
	if token.AccessToken == "" {
		t.Fatal("register returned empty access token")
	}
	return token.AccessToken
}

func createMeeting(t *testing.T, ts *httptest.Server, token, title string) *entity.Meeting {
	t.Helper()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/meetings/", token, map[string]string{"title": title})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create meeting returned %d", resp.StatusCode)
	}
	var meeting entity.Meeting
	decodeBody(t, resp, &meeting)
	return &meeting
}

func uploadAudio(t *testing.T, ts *httptest.Server, token, meetingID string, audio []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "recording.webm")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(audio); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/api/meetings/%s/upload-audio", ts.URL, meetingID), &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	return resp
}

func TestRootAndHealth(t *testing.T) {
	ts := setupServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	var root map[string]string
	decodeBody(t, resp, &root)
	if root["service"] != "MeetNote API" {
		t.Errorf("unexpected service name %q", root["service"])
	}

	resp, err = http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	var health entity.HealthStatus
	decodeBody(t, resp, &health)
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got %q", health.Status)
	}
	if health.Whisper != "mock" || health.Summarizer != "unconfigured" {
		t.Errorf("unexpected engine modes: %q / %q", health.Whisper, health.Summarizer)
	}
}

func TestRegisterLoginMe(t *testing.T) {
	ts := setupServer(t)
	registerAndLogin(t, ts, "a@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "a@example.com", "password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
	var token entity.TokenResponse
	decodeBody(t, resp, &token)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", token.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me returned %d", resp.StatusCode)
	}
	var me entity.User
	decodeBody(t, resp, &me)
	if me.Email != "a@example.com" {
		t.Errorf("unexpected email %q", me.Email)
	}
}

func TestRegisterDuplicateEmailIs400(t *testing.T) {
	ts := setupServer(t)
	registerAndLogin(t, ts, "a@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"email": "a@example.com", "password": "other", "name": "Other",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", resp.StatusCode)
	}
}

func TestLoginWrongPasswordIs401(t *testing.T) {
	ts := setupServer(t)
	registerAndLogin(t, ts, "a@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "a@example.com", "password": "wrong",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := setupServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/meetings/"},
		{http.MethodPost, "/api/meetings/"},
		{http.MethodGet, "/api/meetings/some-id/"},
	}
	for _, p := range paths {
		resp := doJSON(t, p.method, ts.URL+p.path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token, got %d", p.method, p.path, resp.StatusCode)
		}
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", "not.a.token", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
}

func TestExpiredTokenIs401(t *testing.T) {
	ts := setupServer(t)
	token := registerAndLogin(t, ts, "a@example.com")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me returned %d", resp.StatusCode)
	}
	var me entity.User
	decodeBody(t, resp, &me)

	// An expired token for a real, active user must still be rejected.
	expired, err := jwt.Generate(context.Background(), me.ID, "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", expired, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %d", resp.StatusCode)
	}
}

func TestMeetingLifecycleOverHTTP(t *testing.T) {
	ts := setupServer(t)
	token := registerAndLogin(t, ts, "a@example.com")

	meeting := createMeeting(t, ts, token, "Standup")
	if meeting.Status != entity.StatusRecording {
		t.Fatalf("expected recording status, got %s", meeting.Status)
	}

	resp := uploadAudio(t, ts, token, meeting.ID, make([]byte, 42_000))
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("upload returned %d: %s", resp.StatusCode, body)
	}
	var upload entity.UploadAudioResponse
	decodeBody(t, resp, &upload)
	if upload.Transcript == "" || upload.Summary == nil {
		t.Error("upload response missing transcript or summary")
	}

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/meetings/%s/", ts.URL, meeting.ID), token, nil)
	var got entity.Meeting
	decodeBody(t, resp, &got)
	if got.Status != entity.StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/meetings/", token, nil)
	var list []entity.Meeting
	decodeBody(t, resp, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 meeting, got %d", len(list))
	}

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/meetings/%s/", ts.URL, meeting.ID), token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete returned %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/meetings/%s/", ts.URL, meeting.ID), token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestStopMeetingOverHTTP(t *testing.T) {
	ts := setupServer(t)
	token := registerAndLogin(t, ts, "a@example.com")
	meeting := createMeeting(t, ts, token, "Standup")

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/meetings/%s/stop", ts.URL, meeting.ID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop returned %d", resp.StatusCode)
	}
	var stopped struct {
		Message string         `json:"message"`
		Meeting entity.Meeting `json:"meeting"`
	}
	decodeBody(t, resp, &stopped)
	if stopped.Meeting.Status != entity.StatusCompleted {
		t.Errorf("expected completed, got %s", stopped.Meeting.Status)
	}

	// Second stop hits a terminal state.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/meetings/%s/stop", ts.URL, meeting.ID), token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for second stop, got %d", resp.StatusCode)
	}
}

func TestHighlightsOverHTTP(t *testing.T) {
	ts := setupServer(t)
	token := registerAndLogin(t, ts, "a@example.com")
	meeting := createMeeting(t, ts, token, "Standup")

	resp := uploadAudio(t, ts, token, meeting.ID, make([]byte, 42_000))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload returned %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/meetings/%s/highlights", ts.URL, meeting.ID), token,
		map[string]any{"title": "Whole call", "start_time": 0, "end_time": 1000})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create highlight returned %d", resp.StatusCode)
	}
	var highlight entity.Highlight
	decodeBody(t, resp, &highlight)
	if highlight.TranscriptText == "" {
		t.Error("expected highlight to capture transcript text")
	}

	resp = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/meetings/%s/highlights", ts.URL, meeting.ID), token, nil)
	var listed []entity.Highlight
	decodeBody(t, resp, &listed)
	if len(listed) != 1 {
		t.Errorf("expected 1 highlight, got %d", len(listed))
	}
}

func TestMeetingsAreIsolatedPerUser(t *testing.T) {
	ts := setupServer(t)
	owner := registerAndLogin(t, ts, "owner@example.com")
	intruder := registerAndLogin(t, ts, "intruder@example.com")

	meeting := createMeeting(t, ts, owner, "Private")

	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/meetings/%s/", ts.URL, meeting.ID), intruder, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for foreign meeting, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/meetings/", intruder, nil)
	var list []entity.Meeting
	decodeBody(t, resp, &list)
	if len(list) != 0 {
		t.Errorf("expected empty list for intruder, got %d", len(list))
	}
}

func TestDeleteAccountOverHTTP(t *testing.T) {
	ts := setupServer(t)
	token := registerAndLogin(t, ts, "a@example.com")

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/auth/me", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete account returned %d", resp.StatusCode)
	}

	// The token's subject no longer exists.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after account deletion, got %d", resp.StatusCode)
	}
}
