package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Theagentvikram/MeetNote/pkg/gen"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
	"github.com/Theagentvikram/MeetNote/services/meetnote/storage"
)

// Store is the SQLite-backed storage, the default when DATABASE_URL is a file
// path. Cascade deletes are declared in the schema and enforced via foreign_keys.
type Store struct {
	db  *sql.DB
	ids gen.UUIDGenerator
}

func Open(ctx context.Context, path string, ids gen.UUIDGenerator) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if ids == nil {
		ids = gen.UUID()
	}
	s := &Store{db: db, ids: ids}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

var _ storage.Storage = (*Store)(nil)

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range migrationStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	stored := *user
	if stored.ID == "" {
		stored.ID = s.ids.NextString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Email, stored.Name, stored.PasswordHash, stored.IsActive,
		stored.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &stored, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, is_active, created_at
		 FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, is_active, created_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(res, id)
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meetings (id, user_id, title, platform, meeting_url, status, duration,
		                       participants_count, audio_path, summary, key_points, action_items,
		                       started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.UserID, stored.Title, stored.Platform, stored.MeetingURL,
		string(stored.Status), stored.Duration, stored.ParticipantsCount, stored.AudioPath,
		stored.Summary, keyPoints, actionItems,
		stored.StartedAt.Format(time.RFC3339Nano), formatNullableTime(stored.EndedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	return &stored, nil
}

func (s *Store) GetMeeting(ctx context.Context, id string) (*entity.Meeting, error) {
	row := s.db.QueryRowContext(ctx, selectMeeting+` WHERE id = ?`, id)
	return scanMeeting(row)
}

func (s *Store) ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entity.Meeting, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		selectMeeting+` WHERE user_id = ? ORDER BY started_at DESC, id DESC LIMIT ? OFFSET ?`,
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

	res, err := s.db.ExecContext(ctx,
		`UPDATE meetings
		 SET title = ?, platform = ?, meeting_url = ?, status = ?, duration = ?,
		     participants_count = ?, audio_path = ?, summary = ?, key_points = ?,
		     action_items = ?, ended_at = ?
		 WHERE id = ?`,
		meeting.Title, meeting.Platform, meeting.MeetingURL, string(meeting.Status),
		meeting.Duration, meeting.ParticipantsCount, meeting.AudioPath, meeting.Summary,
		keyPoints, actionItems, formatNullableTime(meeting.EndedAt), meeting.ID)
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}
	return requireAffected(res, meeting.ID)
}

func (s *Store) DeleteMeeting(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	return requireAffected(res, id)
}

func (s *Store) InsertSegments(ctx context.Context, segments []*entity.TranscriptSegment) error {
	if len(segments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, seg := range segments {
		id := seg.ID
		if id == "" {
			id = s.ids.NextString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transcript_segments (id, meeting_id, text, start_time, end_time, confidence, speaker)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, seg.MeetingID, seg.Text, seg.StartTime, seg.EndTime, seg.Confidence, seg.Speaker); err != nil {
			return fmt.Errorf("failed to insert segment: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListSegments(ctx context.Context, meetingID string) ([]*entity.TranscriptSegment, error) {
	return s.querySegments(ctx,
		`SELECT id, meeting_id, text, start_time, end_time, confidence, speaker
		 FROM transcript_segments WHERE meeting_id = ? ORDER BY start_time ASC`, meetingID)
}

func (s *Store) ListSegmentsInRange(ctx context.Context, meetingID string, from, to float64) ([]*entity.TranscriptSegment, error) {
	return s.querySegments(ctx,
		`SELECT id, meeting_id, text, start_time, end_time, confidence, speaker
		 FROM transcript_segments
		 WHERE meeting_id = ? AND start_time >= ? AND end_time <= ?
		 ORDER BY start_time ASC`, meetingID, from, to)
}

func (s *Store) querySegments(ctx context.Context, query string, args ...any) ([]*entity.TranscriptSegment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO highlights (id, meeting_id, title, description, start_time, end_time, transcript_text, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.MeetingID, stored.Title, stored.Description,
		stored.StartTime, stored.EndTime, stored.TranscriptText, string(tags))
	if err != nil {
		return nil, fmt.Errorf("failed to create highlight: %w", err)
	}
	return &stored, nil
}

func (s *Store) ListHighlights(ctx context.Context, meetingID string) ([]*entity.Highlight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, meeting_id, title, description, start_time, end_time, transcript_text, tags
		 FROM highlights WHERE meeting_id = ?`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	defer rows.Close()

	highlights := make([]*entity.Highlight, 0)
	for rows.Next() {
		var h entity.Highlight
		var tags string
		if err := rows.Scan(&h.ID, &h.MeetingID, &h.Title, &h.Description,
			&h.StartTime, &h.EndTime, &h.TranscriptText, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &h.Tags); err != nil {
			h.Tags = []string{}
		}
		highlights = append(highlights, &h)
	}
	return highlights, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

const selectMeeting = `SELECT id, user_id, title, platform, meeting_url, status, duration,
       participants_count, audio_path, summary, key_points, action_items, started_at, ended_at
FROM meetings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsActive, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &u, nil
}

func scanMeeting(row rowScanner) (*entity.Meeting, error) {
	var m entity.Meeting
	var status, keyPoints, actionItems, startedAt string
	var endedAt sql.NullString
	err := row.Scan(&m.ID, &m.UserID, &m.Title, &m.Platform, &m.MeetingURL, &status,
		&m.Duration, &m.ParticipantsCount, &m.AudioPath, &m.Summary,
		&keyPoints, &actionItems, &startedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan meeting: %w", err)
	}

	m.Status = entity.MeetingStatus(status)
	if err := json.Unmarshal([]byte(keyPoints), &m.KeyPoints); err != nil {
		m.KeyPoints = []string{}
	}
	if err := json.Unmarshal([]byte(actionItems), &m.ActionItems); err != nil {
		m.ActionItems = []string{}
	}
	m.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	if endedAt.Valid && endedAt.String != "" {
		t, err := time.Parse(time.RFC3339Nano, endedAt.String)
		if err == nil {
			m.EndedAt = &t
		}
	}
	return &m, nil
}

func marshalMeetingLists(m *entity.Meeting) (string, string, error) {
	if m.KeyPoints == nil {
		m.KeyPoints = []string{}
	}
	if m.ActionItems == nil {
		m.ActionItems = []string{}
	}
	keyPoints, err := json.Marshal(m.KeyPoints)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal key points: %w", err)
	}
	actionItems, err := json.Marshal(m.ActionItems)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal action items: %w", err)
	}
	return string(keyPoints), string(actionItems), nil
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
