package storage

import (
	"context"

	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

// Storage is the single persistence interface behind which the interchangeable
// backends (memory, sqlite, postgres) live. Callers pick a backend through
// DATABASE_URL; the rest of the service only sees this interface.
type Storage interface {
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) error

	CreateMeeting(ctx context.Context, meeting *entity.Meeting) (*entity.Meeting, error)
	GetMeeting(ctx context.Context, id string) (*entity.Meeting, error)
	ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entity.Meeting, error)
	UpdateMeeting(ctx context.Context, meeting *entity.Meeting) error
	DeleteMeeting(ctx context.Context, id string) error

	InsertSegments(ctx context.Context, segments []*entity.TranscriptSegment) error
	ListSegments(ctx context.Context, meetingID string) ([]*entity.TranscriptSegment, error)
	// ListSegmentsInRange returns the segments fully contained in [from, to],
	// ordered by start time.
	ListSegmentsInRange(ctx context.Context, meetingID string, from, to float64) ([]*entity.TranscriptSegment, error)

	CreateHighlight(ctx context.Context, highlight *entity.Highlight) (*entity.Highlight, error)
	ListHighlights(ctx context.Context, meetingID string) ([]*entity.Highlight, error)

	Ping(ctx context.Context) error
	Close() error
}
