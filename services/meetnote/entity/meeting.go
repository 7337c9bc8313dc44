package entity

type (
	CreateMeetingRequest struct {
		Title      string `json:"title"`
		Platform   string `json:"platform,omitempty"`
		MeetingURL string `json:"meeting_url,omitempty"`
	}

	CreateHighlightRequest struct {
		Title       string  `json:"title"`
		StartTime   float64 `json:"start_time"`
		EndTime     float64 `json:"end_time"`
		Description string  `json:"description,omitempty"`
	}

	UploadAudioResponse struct {
		Message    string   `json:"message"`
		Transcript string   `json:"transcript"`
		Summary    *Summary `json:"summary"`
	}
)

// Transcription is the normalized output of the speech engine. Mock marks a
// deterministic placeholder produced when the engine was unavailable.
type Transcription struct {
	Text       string
	Segments   []TranscriptionSegment
	Language   string
	Confidence float64
	Duration   float64
	Mock       bool
}

type TranscriptionSegment struct {
	Start      float64
	End        float64
	Text       string
	Confidence float64
}

type Summary struct {
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	ActionItems []string `json:"action_items"`
}

type HealthStatus struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	Whisper    string `json:"whisper"`
	Summarizer string `json:"summarizer"`
	Version    string `json:"version"`
}
