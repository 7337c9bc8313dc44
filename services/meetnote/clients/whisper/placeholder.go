package whisper

import (
	"strings"

	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

const (
	shortTranscript  = "Hello, this is a brief test recording for the MeetNote application."
	mediumTranscript = "This is a meeting recording. We discussed the project progress, reviewed the current status, and planned next steps for the upcoming sprint."
	longTranscript   = "This is a comprehensive meeting recording. We covered multiple topics including project updates, technical discussions, resource allocation, and strategic planning. The team reviewed current progress and identified key action items for the next phase."
)

// Placeholder builds a deterministic stand-in transcription from the audio size
// alone. The tiering mirrors the estimated recording length: anything the engine
// cannot process still produces a usable, clearly marked result.
func Placeholder(audioSize int) *entity.Transcription {
	duration := estimateDuration(audioSize)

	var text string
	var confidence float64
	switch {
	case duration < 30:
		text = shortTranscript
		confidence = 0.75
	case duration < 120:
		text = mediumTranscript
		confidence = 0.85
	default:
		text = longTranscript
		confidence = 0.90
	}

	return &entity.Transcription{
		Text:       text,
		Segments:   splitIntoSegments(text, float64(duration), confidence),
		Language:   "en",
		Confidence: confidence,
		Duration:   float64(duration),
		Mock:       true,
	}
}

// estimateDuration approximates seconds of audio from byte size, clamped to
// [5, 300] the same way the placeholder tiers expect.
func estimateDuration(audioSize int) int {
	duration := audioSize / 1000
	if duration < 5 {
		return 5
	}
	if duration > 300 {
		return 300
	}
	return duration
}

// splitIntoSegments distributes the placeholder sentences evenly across the
// estimated duration so downstream highlight lookups have ranges to work with.
func splitIntoSegments(text string, duration, confidence float64) []entity.TranscriptionSegment {
	sentences := strings.SplitAfter(text, ". ")
	segments := make([]entity.TranscriptionSegment, 0, len(sentences))

	step := duration / float64(len(sentences))
	for i, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		segments = append(segments, entity.TranscriptionSegment{
			Start:      float64(i) * step,
			End:        float64(i+1) * step,
			Text:       sentence,
			Confidence: confidence,
		})
	}
	return segments
}
