package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

// Client wraps the OpenRouter chat-completions endpoint used for meeting
// summarization. Summarize never fails: a malformed model response falls back
// to heuristic text parsing, and an unreachable endpoint falls back to a static
// apology summary.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

func New(apiKey, baseURL, model string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	log.Debug("creating openrouter client",
		slog.String("base_url", baseURL),
		slog.String("model", model),
		slog.Bool("api_key_set", apiKey != ""))
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

// Mode reports whether the client is configured to call the real endpoint.
func (c *Client) Mode() string {
	if c.apiKey == "" {
		return "unconfigured"
	}
	return "configured"
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const summaryPrompt = `You are an AI assistant specialized in analyzing meeting transcripts. Analyze the following meeting transcript and provide:

1. A concise summary (2-3 sentences)
2. Key points discussed (bullet points)
3. Action items and decisions (if any)

Format your response as JSON with keys: summary, key_points (array), action_items (array)

Transcript:
%s

Response:`

func (c *Client) Summarize(ctx context.Context, transcript string) *entity.Summary {
	if c.apiKey == "" {
		c.log.Warn("openrouter api key not configured, skipping summarization")
		return &entity.Summary{
			Summary:     "AI summarization not configured",
			KeyPoints:   []string{},
			ActionItems: []string{},
		}
	}

	content, err := c.complete(ctx, fmt.Sprintf(summaryPrompt, transcript), 1000)
	if err != nil {
		c.log.Error("summarization failed", slog.String("error", err.Error()))
		return staticFallback()
	}

	summary := ParseModelResponse(content)
	c.log.Info("meeting summary generated",
		slog.Int("key_points", len(summary.KeyPoints)),
		slog.Int("action_items", len(summary.ActionItems)))
	return summary
}

// DescribeHighlight produces a one-sentence description of a transcript excerpt.
func (c *Client) DescribeHighlight(ctx context.Context, excerpt string) string {
	const fallback = "Highlight from meeting"
	if c.apiKey == "" || excerpt == "" {
		return fallback
	}

	prompt := fmt.Sprintf("Summarize this meeting excerpt in one concise sentence:\n\n%s", excerpt)
	content, err := c.complete(ctx, prompt, 100)
	if err != nil {
		c.log.Error("highlight description failed", slog.String("error", err.Error()))
		return fallback
	}
	if desc := strings.TrimSpace(content); desc != "" {
		return desc
	}
	return fallback
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "https://meetnoteapp.netlify.app")
	req.Header.Set("X-Title", "MeetNote")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openrouter http %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
