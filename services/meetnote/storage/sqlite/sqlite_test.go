package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "meetnote_test.db")
	store, err := Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, s *Store, email string) *entity.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), &entity.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hashed",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestUserRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	created := createTestUser(t, s, "a@example.com")

	byEmail, err := s.GetUserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("expected id %s, got %s", created.ID, byEmail.ID)
	}
	if !byEmail.IsActive {
		t.Error("expected user to be active")
	}

	byID, err := s.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != "a@example.com" {
		t.Errorf("unexpected email %q", byID.Email)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := setupStore(t)

	createTestUser(t, s, "a@example.com")
	_, err := s.CreateUser(context.Background(), &entity.User{
		Email: "a@example.com", Name: "Other", PasswordHash: "x", IsActive: true,
	})
	if !errors.Is(err, entity.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := setupStore(t)

	if _, err := s.GetUserByEmail(context.Background(), "missing@example.com"); !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("expected ErrNotFound by email, got %v", err)
	}
	if _, err := s.GetUserByID(context.Background(), "missing"); !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("expected ErrNotFound by id, got %v", err)
	}
}

func TestMeetingRoundTripAndUpdate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "a@example.com")

	meeting, err := s.CreateMeeting(ctx, &entity.Meeting{
		UserID:    user.ID,
		Title:     "Planning",
		Platform:  "zoom",
		Status:    entity.StatusRecording,
		StartedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	ended := time.Now().UTC()
	meeting.Status = entity.StatusCompleted
	meeting.Duration = 120
	meeting.Summary = "We planned things"
	meeting.KeyPoints = []string{"point one"}
	meeting.ActionItems = []string{"do the thing"}
	meeting.EndedAt = &ended
	if err := s.UpdateMeeting(ctx, meeting); err != nil {
		t.Fatalf("UpdateMeeting failed: %v", err)
	}

	got, err := s.GetMeeting(ctx, meeting.ID)
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if got.Status != entity.StatusCompleted {
		t.Errorf("expected status completed, got %s", got.Status)
	}
	if got.Duration != 120 {
		t.Errorf("expected duration 120, got %d", got.Duration)
	}
	if len(got.KeyPoints) != 1 || got.KeyPoints[0] != "point one" {
		t.Errorf("key points did not survive the round trip: %v", got.KeyPoints)
	}
	if len(got.ActionItems) != 1 || got.ActionItems[0] != "do the thing" {
		t.Errorf("action items did not survive the round trip: %v", got.ActionItems)
	}
	if got.EndedAt == nil {
		t.Error("expected ended_at to be set")
	}
}

func TestUpdateMeetingNotFound(t *testing.T) {
	s := setupStore(t)

	err := s.UpdateMeeting(context.Background(), &entity.Meeting{ID: "missing", Title: "X"})
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListMeetingsNewestFirst(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "a@example.com")

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := s.CreateMeeting(ctx, &entity.Meeting{
			UserID:    user.ID,
			Title:     "Meeting",
			Status:    entity.StatusRecording,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("CreateMeeting failed: %v", err)
		}
	}

	meetings, err := s.ListMeetings(ctx, user.ID, 2, 0)
	if err != nil {
		t.Fatalf("ListMeetings failed: %v", err)
	}
	if len(meetings) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(meetings))
	}
	if !meetings[0].StartedAt.After(meetings[1].StartedAt) {
		t.Errorf("expected newest first, got %v then %v", meetings[0].StartedAt, meetings[1].StartedAt)
	}

	rest, err := s.ListMeetings(ctx, user.ID, 10, 2)
	if err != nil {
		t.Fatalf("ListMeetings failed: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("expected 1 meeting after offset 2, got %d", len(rest))
	}
}

func TestSegmentsRangeContainment(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "a@example.com")

	meeting, err := s.CreateMeeting(ctx, &entity.Meeting{
		UserID: user.ID, Title: "Sync", Status: entity.StatusRecording, StartedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	if err := s.InsertSegments(ctx, []*entity.TranscriptSegment{
		{MeetingID: meeting.ID, Text: "first", StartTime: 0, EndTime: 5, Confidence: 0.9},
		{MeetingID: meeting.ID, Text: "second", StartTime: 8, EndTime: 15, Confidence: 0.9},
		{MeetingID: meeting.ID, Text: "third", StartTime: 15, EndTime: 25, Confidence: 0.9},
	}); err != nil {
		t.Fatalf("InsertSegments failed: %v", err)
	}

	contained, err := s.ListSegmentsInRange(ctx, meeting.ID, 10, 20)
	if err != nil {
		t.Fatalf("ListSegmentsInRange failed: %v", err)
	}
	if len(contained) != 0 {
		t.Errorf("overlapping-only segments must be excluded, got %d", len(contained))
	}

	all, err := s.ListSegments(ctx, meeting.ID)
	if err != nil {
		t.Fatalf("ListSegments failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(all))
	}
	if all[0].Text != "first" {
		t.Errorf("segments not ordered by start_time: first is %q", all[0].Text)
	}
}

func TestDeleteMeetingCascades(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "a@example.com")

	meeting, err := s.CreateMeeting(ctx, &entity.Meeting{
		UserID: user.ID, Title: "Sync", Status: entity.StatusRecording, StartedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if err := s.InsertSegments(ctx, []*entity.TranscriptSegment{
		{MeetingID: meeting.ID, Text: "hello", StartTime: 0, EndTime: 5},
	}); err != nil {
		t.Fatalf("InsertSegments failed: %v", err)
	}
	if _, err := s.CreateHighlight(ctx, &entity.Highlight{
		MeetingID: meeting.ID, Title: "H", StartTime: 0, EndTime: 5,
	}); err != nil {
		t.Fatalf("CreateHighlight failed: %v", err)
	}

	if err := s.DeleteMeeting(ctx, meeting.ID); err != nil {
		t.Fatalf("DeleteMeeting failed: %v", err)
	}

	segments, err := s.ListSegments(ctx, meeting.ID)
	if err != nil {
		t.Fatalf("ListSegments failed: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("expected segments to cascade, got %d", len(segments))
	}
	highlights, err := s.ListHighlights(ctx, meeting.ID)
	if err != nil {
		t.Fatalf("ListHighlights failed: %v", err)
	}
	if len(highlights) != 0 {
		t.Errorf("expected highlights to cascade, got %d", len(highlights))
	}
}

func TestDeleteUserCascadesToMeetings(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "a@example.com")

	meeting, err := s.CreateMeeting(ctx, &entity.Meeting{
		UserID: user.ID, Title: "Sync", Status: entity.StatusRecording, StartedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	if err := s.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := s.GetMeeting(ctx, meeting.ID); !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("expected meeting to cascade with its owner, got %v", err)
	}
}

func TestHighlightRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "a@example.com")

	meeting, err := s.CreateMeeting(ctx, &entity.Meeting{
		UserID: user.ID, Title: "Sync", Status: entity.StatusCompleted, StartedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	created, err := s.CreateHighlight(ctx, &entity.Highlight{
		MeetingID:      meeting.ID,
		Title:          "Decision",
		Description:    "Key decision moment",
		StartTime:      30,
		EndTime:        45,
		TranscriptText: "we decided",
		Tags:           []string{"decision"},
	})
	if err != nil {
		t.Fatalf("CreateHighlight failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected highlight id to be generated")
	}

	highlights, err := s.ListHighlights(ctx, meeting.ID)
	if err != nil {
		t.Fatalf("ListHighlights failed: %v", err)
	}
	if len(highlights) != 1 {
		t.Fatalf("expected 1 highlight, got %d", len(highlights))
	}
	got := highlights[0]
	if got.Title != "Decision" || got.TranscriptText != "we decided" {
		t.Errorf("highlight fields did not survive the round trip: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "decision" {
		t.Errorf("tags did not survive the round trip: %v", got.Tags)
	}
}
