package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Theagentvikram/MeetNote/pkg/logger"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

// CreateHighlight excerpts the transcript segments fully contained in the
// requested range. Allowed in any meeting status; a range with no contained
// segments yields an empty excerpt, not an error.
func (u *usecase) CreateHighlight(ctx context.Context, userID, meetingID string, req *entity.CreateHighlightRequest) (*entity.Highlight, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required: %w", entity.ErrValidation)
	}
	if req.StartTime < 0 || req.StartTime >= req.EndTime {
		return nil, fmt.Errorf("start_time must be non-negative and before end_time: %w", entity.ErrValidation)
	}

	if _, err := u.ownedMeeting(ctx, userID, meetingID); err != nil {
		return nil, err
	}

	segments, err := u.storage.ListSegmentsInRange(ctx, meetingID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	excerpt := strings.Join(texts, " ")

	description := req.Description
	if description == "" {
		description = u.summarizer.DescribeHighlight(ctx, excerpt)
	}

	highlight, err := u.storage.CreateHighlight(ctx, &entity.Highlight{
		MeetingID:      meetingID,
		Title:          req.Title,
		Description:    description,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		TranscriptText: excerpt,
		Tags:           []string{},
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "highlight created",
		"highlight_id", highlight.ID,
		"meeting_id", meetingID,
		"segments", len(segments))
	return highlight, nil
}

func (u *usecase) ListHighlights(ctx context.Context, userID, meetingID string) ([]*entity.Highlight, error) {
	if _, err := u.ownedMeeting(ctx, userID, meetingID); err != nil {
		return nil, err
	}
	return u.storage.ListHighlights(ctx, meetingID)
}
