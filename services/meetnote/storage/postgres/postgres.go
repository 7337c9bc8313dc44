package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Theagentvikram/MeetNote/pkg/gen"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
	"github.com/Theagentvikram/MeetNote/services/meetnote/storage"
)

const uniqueViolationCode = "23505"

// Store is the Postgres-backed storage, selected when DATABASE_URL uses a
// postgres:// connection string.
type Store struct {
	pool *pgxpool.Pool
	ids  gen.UUIDGenerator
}

func Open(ctx context.Context, url string, ids gen.UUIDGenerator) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if ids == nil {
		ids = gen.UUID()
	}
	s := &Store{pool: pool, ids: ids}
	if err := RunMigration(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

var _ storage.Storage = (*Store)(nil)

func (s *Store) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	stored := *user
	if stored.ID == "" {
		stored.ID = s.ids.NextString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		stored.ID, stored.Email, stored.Name, stored.PasswordHash, stored.IsActive, stored.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, entity.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &stored, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, is_active, created_at FROM users WHERE email = $1`,
		email)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, is_active, created_at FROM users WHERE id = $1`,
		id)
	return scanUser(row)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateMeeting(ctx context.Context, meeting *entity.Meeting) (*entity.Meeting, error) {
	stored := *meeting
	if stored.ID == "" {
		stored.ID = s.ids.NextString()
	}
	keyPoints, actionItems, err := marshalMeetingLists(&stored)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO meetings (id, user_id, title, platform, meeting_url, status, duration,
		                       participants_count, audio_path, summary, key_points, action_items,
		                       started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		stored.ID, stored.UserID, stored.Title, stored.Platform, stored.MeetingURL,
		string(stored.Status), stored.Duration, stored.ParticipantsCount, stored.AudioPath,
		stored.Summary, keyPoints, actionItems, stored.StartedAt, stored.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	return &stored, nil
}

func (s *Store) GetMeeting(ctx context.Context, id string) (*entity.Meeting, error) {
	row := s.pool.QueryRow(ctx, selectMeeting+` WHERE id = $1`, id)
	return scanMeeting(row)
}

func (s *Store) ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entity.Meeting, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		selectMeeting+` WHERE user_id = $1 ORDER BY started_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	meetings := make([]*entity.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (s *Store) UpdateMeeting(ctx context.Context, meeting *entity.Meeting) error {
	keyPoints, actionItems, err := marshalMeetingLists(meeting)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE meetings
		 SET title = $2, platform = $3, meeting_url = $4, status = $5, duration = $6,
		     participants_count = $7, audio_path = $8, summary = $9, key_points = $10,
		     action_items = $11, ended_at = $12
		 WHERE id = $1`,
		meeting.ID, meeting.Title, meeting.Platform, meeting.MeetingURL, string(meeting.Status),
		meeting.Duration, meeting.ParticipantsCount, meeting.AudioPath, meeting.Summary,
		keyPoints, actionItems, meeting.EndedAt)
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("meeting %s: %w", meeting.ID, entity.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteMeeting(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("meeting %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (s *Store) InsertSegments(ctx context.Context, segments []*entity.TranscriptSegment) error {
	if len(segments) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, seg := range segments {
		id := seg.ID
		if id == "" {
			id = s.ids.NextString()
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO transcript_segments (id, meeting_id, text, start_time, end_time, confidence, speaker)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, seg.MeetingID, seg.Text, seg.StartTime, seg.EndTime, seg.Confidence, seg.Speaker); err != nil {
			return fmt.Errorf("failed to insert segment: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) ListSegments(ctx context.Context, meetingID string) ([]*entity.TranscriptSegment, error) {
	return s.querySegments(ctx,
		`SELECT id, meeting_id, text, start_time, end_time, confidence, speaker
		 FROM transcript_segments WHERE meeting_id = $1 ORDER BY start_time ASC`, meetingID)
}

func (s *Store) ListSegmentsInRange(ctx context.Context, meetingID string, from, to float64) ([]*entity.TranscriptSegment, error) {
	return s.querySegments(ctx,
		`SELECT id, meeting_id, text, start_time, end_time, confidence, speaker
		 FROM transcript_segments
		 WHERE meeting_id = $1 AND start_time >= $2 AND end_time <= $3
		 ORDER BY start_time ASC`, meetingID, from, to)
}

func (s *Store) querySegments(ctx context.Context, query string, args ...any) ([]*entity.TranscriptSegment, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := make([]*entity.TranscriptSegment, 0)
	for rows.Next() {
		var seg entity.TranscriptSegment
		if err := rows.Scan(&seg.ID, &seg.MeetingID, &seg.Text, &seg.StartTime,
			&seg.EndTime, &seg.Confidence, &seg.Speaker); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, &seg)
	}
	return segments, rows.Err()
}

func (s *Store) CreateHighlight(ctx context.Context, highlight *entity.Highlight) (*entity.Highlight, error) {
	stored := *highlight
	if stored.ID == "" {
		stored.ID = s.ids.NextString()
	}
	if stored.Tags == nil {
		stored.Tags = []string{}
	}
	tags, err := json.Marshal(stored.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO highlights (id, meeting_id, title, description, start_time, end_time, transcript_text, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		stored.ID, stored.MeetingID, stored.Title, stored.Description,
		stored.StartTime, stored.EndTime, stored.TranscriptText, tags)
	if err != nil {
		return nil, fmt.Errorf("failed to create highlight: %w", err)
	}
	return &stored, nil
}

func (s *Store) ListHighlights(ctx context.Context, meetingID string) ([]*entity.Highlight, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, meeting_id, title, description, start_time, end_time, transcript_text, tags
		 FROM highlights WHERE meeting_id = $1`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	defer rows.Close()

	highlights := make([]*entity.Highlight, 0)
	for rows.Next() {
		var h entity.Highlight
		var tags []byte
		if err := rows.Scan(&h.ID, &h.MeetingID, &h.Title, &h.Description,
			&h.StartTime, &h.EndTime, &h.TranscriptText, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		if err := json.Unmarshal(tags, &h.Tags); err != nil {
			h.Tags = []string{}
		}
		highlights = append(highlights, &h)
	}
	return highlights, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const selectMeeting = `SELECT id, user_id, title, platform, meeting_url, status, duration,
       participants_count, audio_path, summary, key_points, action_items, started_at, ended_at
FROM meetings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func scanMeeting(row rowScanner) (*entity.Meeting, error) {
	var m entity.Meeting
	var status string
	var keyPoints, actionItems []byte
	var endedAt *time.Time
	err := row.Scan(&m.ID, &m.UserID, &m.Title, &m.Platform, &m.MeetingURL, &status,
		&m.Duration, &m.ParticipantsCount, &m.AudioPath, &m.Summary,
		&keyPoints, &actionItems, &m.StartedAt, &endedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan meeting: %w", err)
	}

	m.Status = entity.MeetingStatus(status)
	if err := json.Unmarshal(keyPoints, &m.KeyPoints); err != nil {
		m.KeyPoints = []string{}
	}
	if err := json.Unmarshal(actionItems, &m.ActionItems); err != nil {
		m.ActionItems = []string{}
	}
	m.EndedAt = endedAt
	return &m, nil
}

func marshalMeetingLists(m *entity.Meeting) ([]byte, []byte, error) {
	if m.KeyPoints == nil {
		m.KeyPoints = []string{}
	}
	if m.ActionItems == nil {
		m.ActionItems = []string{}
	}
	keyPoints, err := json.Marshal(m.KeyPoints)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal key points: %w", err)
	}
	actionItems, err := json.Marshal(m.ActionItems)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal action items: %w", err)
	}
	return keyPoints, actionItems, nil
}
