package entity

import "time"

type MeetingStatus string

const (
	StatusRecording  MeetingStatus = "recording"
	StatusProcessing MeetingStatus = "processing"
	StatusCompleted  MeetingStatus = "completed"
	StatusFailed     MeetingStatus = "failed"
)

// Terminal reports whether no further lifecycle transition is allowed.
func (s MeetingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type (
	User struct {
		ID           string    `json:"id"`
		Email        string    `json:"email"`
		Name         string    `json:"name"`
		PasswordHash string    `json:"-"`
		IsActive     bool      `json:"is_active"`
		CreatedAt    time.Time `json:"created_at"`
	}

	Meeting struct {
		ID                string        `json:"id"`
		UserID            string        `json:"user_id"`
		Title             string        `json:"title"`
		Platform          string        `json:"platform,omitempty"`
		MeetingURL        string        `json:"meeting_url,omitempty"`
		Status            MeetingStatus `json:"status"`
		Duration          int           `json:"duration"`
		ParticipantsCount int           `json:"participants_count"`
		AudioPath         string        `json:"-"`
		Summary           string        `json:"summary,omitempty"`
		KeyPoints         []string      `json:"key_points"`
		ActionItems       []string      `json:"action_items"`
		StartedAt         time.Time     `json:"started_at"`
		EndedAt           *time.Time    `json:"ended_at,omitempty"`
	}

	TranscriptSegment struct {
		ID         string  `json:"id"`
		MeetingID  string  `json:"meeting_id"`
		Text       string  `json:"text"`
		StartTime  float64 `json:"start_time"`
		EndTime    float64 `json:"end_time"`
		Confidence float64 `json:"confidence"`
		Speaker    string  `json:"speaker,omitempty"`
	}

	Highlight struct {
		ID             string   `json:"id"`
		MeetingID      string   `json:"meeting_id"`
		Title          string   `json:"title"`
		Description    string   `json:"description,omitempty"`
		StartTime      float64  `json:"start_time"`
		EndTime        float64  `json:"end_time"`
		TranscriptText string   `json:"transcript_text"`
		Tags           []string `json:"tags"`
	}
)
