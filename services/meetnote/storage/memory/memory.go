package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Theagentvikram/MeetNote/pkg/gen"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
	"github.com/Theagentvikram/MeetNote/services/meetnote/storage"
)

// Store keeps everything in process memory behind a single mutex. Intended for
// tests and local development; contents are lost on restart.
type Store struct {
	mu sync.RWMutex

	users      map[string]*entity.User
	meetings   map[string]*entity.Meeting
	segments   map[string][]*entity.TranscriptSegment // keyed by meeting id
	highlights map[string][]*entity.Highlight         // keyed by meeting id

	ids gen.UUIDGenerator
}

func New(ids gen.UUIDGenerator) *Store {
	if ids == nil {
		ids = gen.UUID()
	}
	return &Store{
		users:      make(map[string]*entity.User),
		meetings:   make(map[string]*entity.Meeting),
		segments:   make(map[string][]*entity.TranscriptSegment),
		highlights: make(map[string][]*entity.Highlight),
		ids:        ids,
	}
}

var _ storage.Storage = (*Store)(nil)

func (s *Store) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, entity.ErrDuplicateEmail
		}
	}

	stored := *user
	if stored.ID == "" {
		stored.ID = s.ids.NextString()
	}
	s.users[stored.ID] = &stored

	copied := stored
	return &copied, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, entity.ErrNotFound)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, entity.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, entity.ErrNotFound)
	}
	delete(s.users, id)

	for mid, m := range s.meetings {
		if m.UserID == id {
			delete(s.meetings, mid)
			delete(s.segments, mid)
			delete(s.highlights, mid)
		}
	}
	return nil
}

func (s *Store) CreateMeeting(ctx context.Context, meeting *entity.Meeting) (*entity.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *meeting
	if stored.ID == "" {
		stored.ID = s.ids.NextString()
	}
	s.meetings[stored.ID] = &stored

	copied := stored
	return &copied, nil
}

func (s *Store) GetMeeting(ctx context.Context, id string) (*entity.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meetings[id]
	if !ok {
		return nil, fmt.Errorf("meeting %s: %w", id, entity.ErrNotFound)
	}
	copied := *m
	return &copied, nil
}

func (s *Store) ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entity.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]*entity.Meeting, 0)
	for _, m := range s.meetings {
		if m.UserID == userID {
			copied := *m
			owned = append(owned, &copied)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].StartedAt.Equal(owned[j].StartedAt) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].StartedAt.After(owned[j].StartedAt)
	})

	if offset >= len(owned) {
		return []*entity.Meeting{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (s *Store) UpdateMeeting(ctx context.Context, meeting *entity.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meetings[meeting.ID]; !ok {
		return fmt.Errorf("meeting %s: %w", meeting.ID, entity.ErrNotFound)
	}
	stored := *meeting
	s.meetings[meeting.ID] = &stored
	return nil
}

func (s *Store) DeleteMeeting(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meetings[id]; !ok {
		return fmt.Errorf("meeting %s: %w", id, entity.ErrNotFound)
	}
	delete(s.meetings, id)
	delete(s.segments, id)
	delete(s.highlights, id)
	return nil
}

func (s *Store) InsertSegments(ctx context.Context, segments []*entity.TranscriptSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, seg := range segments {
		stored := *seg
		if stored.ID == "" {
			stored.ID = s.ids.NextString()
		}
		s.segments[stored.MeetingID] = append(s.segments[stored.MeetingID], &stored)
	}
	return nil
}

func (s *Store) ListSegments(ctx context.Context, meetingID string) ([]*entity.TranscriptSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.segmentsLocked(meetingID, func(*entity.TranscriptSegment) bool { return true }), nil
}

func (s *Store) ListSegmentsInRange(ctx context.Context, meetingID string, from, to float64) ([]*entity.TranscriptSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.segmentsLocked(meetingID, func(seg *entity.TranscriptSegment) bool {
		return seg.StartTime >= from && seg.EndTime <= to
	}), nil
}

func (s *Store) segmentsLocked(meetingID string, keep func(*entity.TranscriptSegment) bool) []*entity.TranscriptSegment {
	out := make([]*entity.TranscriptSegment, 0)
	for _, seg := range s.segments[meetingID] {
		if keep(seg) {
			copied := *seg
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func (s *Store) CreateHighlight(ctx context.Context, highlight *entity.Highlight) (*entity.Highlight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *highlight
	if stored.ID == "" {
		stored.ID = s.ids.NextString()
	}
	s.highlights[stored.MeetingID] = append(s.highlights[stored.MeetingID], &stored)

	copied := stored
	return &copied, nil
}

func (s *Store) ListHighlights(ctx context.Context, meetingID string) ([]*entity.Highlight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Highlight, 0, len(s.highlights[meetingID]))
	for _, h := range s.highlights[meetingID] {
		copied := *h
		out = append(out, &copied)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }
