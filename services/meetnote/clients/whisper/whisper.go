package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

// Client wraps a faster-whisper compatible transcription endpoint. Transcribe
// never fails: when the engine is unreachable or rejects the audio it degrades
// to a deterministic placeholder derived only from the input size, marked with
// Mock so callers can tell it apart from genuine output.
type Client struct {
	apiURL      string
	apiKey      string
	model       string
	device      string
	computeType string
	httpClient  *http.Client
	log         *slog.Logger
}

func New(apiURL, apiKey, model, device, computeType string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	log.Debug("creating whisper client",
		slog.String("api_url", apiURL),
		slog.String("model", model),
		slog.String("compute_type", computeType),
		slog.Bool("api_key_set", apiKey != ""))
	return &Client{
		apiURL:      apiURL,
		apiKey:      apiKey,
		model:       model,
		device:      device,
		computeType: computeType,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
		log:         log,
	}
}

// Mode reports whether the client talks to a real engine or serves placeholders.
func (c *Client) Mode() string {
	if c.apiURL == "" {
		return "mock"
	}
	return "remote"
}

type verboseResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
}

func (c *Client) Transcribe(ctx context.Context, audio []byte, filename, language string) *entity.Transcription {
	if c.apiURL == "" {
		c.log.Warn("whisper endpoint not configured, using mock transcription")
		return Placeholder(len(audio))
	}

	result, err := c.transcribeRemote(ctx, audio, filename, language)
	if err != nil {
		c.log.Error("whisper transcription failed, using mock transcription",
			slog.String("error", err.Error()),
			slog.Int("audio_size", len(audio)))
		return Placeholder(len(audio))
	}

	c.log.Info("audio transcribed",
		slog.Int("segments", len(result.Segments)),
		slog.Float64("duration", result.Duration),
		slog.String("language", result.Language))
	return result
}

func (c *Client) transcribeRemote(ctx context.Context, audio []byte, filename, language string) (*entity.Transcription, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"model":           c.model,
		"language":        language,
		"device":          c.device,
		"compute_type":    c.computeType,
		"response_format": "verbose_json",
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper http %d: %s", resp.StatusCode, string(b))
	}

	var parsed verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	tr := &entity.Transcription{
		Text:     strings.TrimSpace(parsed.Text),
		Language: parsed.Language,
		Duration: parsed.Duration,
	}
	var confidenceSum float64
	for _, seg := range parsed.Segments {
		confidence := logprobToConfidence(seg.AvgLogprob)
		confidenceSum += confidence
		tr.Segments = append(tr.Segments, entity.TranscriptionSegment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       strings.TrimSpace(seg.Text),
			Confidence: confidence,
		})
	}
	if len(tr.Segments) > 0 {
		tr.Confidence = confidenceSum / float64(len(tr.Segments))
	}
	if tr.Text == "" && len(tr.Segments) == 0 {
		return nil, fmt.Errorf("engine returned empty transcription")
	}
	return tr, nil
}

// logprobToConfidence maps whisper's average log probability onto (0, 1].
func logprobToConfidence(logprob float64) float64 {
	if logprob >= 0 {
		return 1
	}
	confidence := 1 + logprob
	if confidence < 0.01 {
		return 0.01
	}
	return confidence
}
