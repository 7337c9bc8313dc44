package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Theagentvikram/MeetNote/pkg/logger"
	"github.com/Theagentvikram/MeetNote/services/meetnote/consts"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

func (u *usecase) CreateMeeting(ctx context.Context, userID string, req *entity.CreateMeetingRequest) (*entity.Meeting, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required: %w", entity.ErrValidation)
	}

	meeting, err := u.storage.CreateMeeting(ctx, &entity.Meeting{
		UserID:      userID,
		Title:       req.Title,
		Platform:    req.Platform,
		MeetingURL:  req.MeetingURL,
		Status:      entity.StatusRecording,
		KeyPoints:   []string{},
		ActionItems: []string{},
		StartedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "meeting created", "meeting_id", meeting.ID, "user_id", userID)
	return meeting, nil
}

// ownedMeeting loads a meeting and hides its existence from non-owners.
func (u *usecase) ownedMeeting(ctx context.Context, userID, meetingID string) (*entity.Meeting, error) {
	meeting, err := u.storage.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.UserID != userID {
		return nil, fmt.Errorf("meeting %s: %w", meetingID, entity.ErrNotFound)
	}
	return meeting, nil
}

func (u *usecase) GetMeeting(ctx context.Context, userID, meetingID string) (*entity.Meeting, error) {
	return u.ownedMeeting(ctx, userID, meetingID)
}

func (u *usecase) ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entity.Meeting, error) {
	return u.storage.ListMeetings(ctx, userID, limit, offset)
}

func (u *usecase) DeleteMeeting(ctx context.Context, userID, meetingID string) error {
	if _, err := u.ownedMeeting(ctx, userID, meetingID); err != nil {
		return err
	}
	return u.storage.DeleteMeeting(ctx, meetingID)
}

// UploadAudio runs the full processing pipeline synchronously within the
// request: store the audio, transcribe, persist segments, summarize, complete.
// The adapters never fail, so only filesystem and datastore errors can move the
// meeting to failed; segments inserted before such an error are kept.
func (u *usecase) UploadAudio(ctx context.Context, userID, meetingID, filename string, audio []byte) (*entity.UploadAudioResponse, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("audio payload is empty: %w", entity.ErrValidation)
	}
	// Extensionless uploads are allowed and stored as .webm.
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."); ext != "" && !consts.SupportedAudioFormat(ext) {
		return nil, fmt.Errorf("unsupported audio format %q: %w", ext, entity.ErrValidation)
	}

	if _, err := u.ownedMeeting(ctx, userID, meetingID); err != nil {
		return nil, err
	}

	lock := u.meetingLock(meetingID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; a concurrent upload may have advanced the state.
	meeting, err := u.ownedMeeting(ctx, userID, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status == entity.StatusProcessing {
		return nil, entity.ErrAlreadyProcessing
	}

	audioPath, err := u.saveAudio(meetingID, filename, audio)
	if err != nil {
		u.markFailed(ctx, meeting)
		return nil, err
	}

	meeting.AudioPath = audioPath
	meeting.Status = entity.StatusProcessing
	if err := u.storage.UpdateMeeting(ctx, meeting); err != nil {
		return nil, err
	}
	logger.Info(ctx, "audio uploaded, starting transcription",
		"meeting_id", meetingID, "audio_size", len(audio))

	transcription := u.transcriber.Transcribe(ctx, audio, filename, u.cfg.Whisper.Language)

	segments := make([]*entity.TranscriptSegment, 0, len(transcription.Segments))
	for _, seg := range transcription.Segments {
		segments = append(segments, &entity.TranscriptSegment{
			MeetingID:  meetingID,
			Text:       seg.Text,
			StartTime:  seg.Start,
			EndTime:    seg.End,
			Confidence: seg.Confidence,
		})
	}
	if err := u.storage.InsertSegments(ctx, segments); err != nil {
		u.markFailed(ctx, meeting)
		return nil, fmt.Errorf("failed to persist transcript: %w", err)
	}

	summary := u.summarizer.Summarize(ctx, transcription.Text)

	now := time.Now().UTC()
	meeting.Status = entity.StatusCompleted
	meeting.Duration = int(transcription.Duration)
	meeting.Summary = summary.Summary
	meeting.KeyPoints = summary.KeyPoints
	meeting.ActionItems = summary.ActionItems
	meeting.EndedAt = &now
	if err := u.storage.UpdateMeeting(ctx, meeting); err != nil {
		u.markFailed(ctx, meeting)
		return nil, fmt.Errorf("failed to complete meeting: %w", err)
	}

	logger.Info(ctx, "meeting processed",
		"meeting_id", meetingID,
		"segments", len(segments),
		"duration", meeting.Duration,
		"mock_transcription", transcription.Mock)

	return &entity.UploadAudioResponse{
		Message:    "Audio processed successfully",
		Transcript: transcription.Text,
		Summary:    summary,
	}, nil
}

func (u *usecase) StopMeeting(ctx context.Context, userID, meetingID string) (*entity.Meeting, error) {
	meeting, err := u.ownedMeeting(ctx, userID, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status.Terminal() {
		return nil, fmt.Errorf("meeting is already %s: %w", meeting.Status, entity.ErrValidation)
	}

	now := time.Now().UTC()
	meeting.Status = entity.StatusCompleted
	meeting.EndedAt = &now
	if err := u.storage.UpdateMeeting(ctx, meeting); err != nil {
		return nil, err
	}

	logger.Info(ctx, "meeting stopped", "meeting_id", meetingID)
	return meeting, nil
}

func (u *usecase) saveAudio(meetingID, filename string, audio []byte) (string, error) {
	if err := os.MkdirAll(u.cfg.RecordingsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create recordings directory: %w", err)
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".webm"
	}
	path := filepath.Join(u.cfg.RecordingsDir, fmt.Sprintf("meeting_%s_%d%s", meetingID, time.Now().UnixNano(), ext))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return path, nil
}

// markFailed is best effort: a failure to record the failure is logged, not
// returned, so the original pipeline error reaches the caller.
func (u *usecase) markFailed(ctx context.Context, meeting *entity.Meeting) {
	meeting.Status = entity.StatusFailed
	if err := u.storage.UpdateMeeting(ctx, meeting); err != nil {
		logger.ErrorErr(ctx, "failed to mark meeting as failed", err, "meeting_id", meeting.ID)
	}
}
