package openrouter

import (
	"encoding/json"
	"strings"

	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
)

// ParseModelResponse extracts a structured summary from raw model output.
// Strict JSON is attempted first; if the model ignored the format instruction
// the line-oriented heuristic takes over.
func ParseModelResponse(content string) *entity.Summary {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		var summary entity.Summary
		if err := json.Unmarshal([]byte(content[start:end+1]), &summary); err == nil {
			normalize(&summary)
			return &summary
		}
	}
	return parseTextResponse(content)
}

// parseTextResponse classifies lines by section keyword and bullet markers.
func parseTextResponse(content string) *entity.Summary {
	var (
		summaryText strings.Builder
		keyPoints   []string
		actionItems []string
		section     string
	)

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "summary"):
			section = "summary"
		case strings.Contains(lower, "key point"):
			section = "key_points"
		case strings.Contains(lower, "action item"):
			section = "action_items"
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*"):
			item := strings.TrimSpace(strings.TrimLeft(line, "-•*"))
			switch section {
			case "key_points":
				keyPoints = append(keyPoints, item)
			case "action_items":
				actionItems = append(actionItems, item)
			}
		case section == "summary":
			summaryText.WriteString(line)
			summaryText.WriteString(" ")
		}
	}

	summary := strings.TrimSpace(summaryText.String())
	if summary == "" {
		summary = "Meeting discussion"
	}
	if len(keyPoints) == 0 {
		keyPoints = []string{"Discussion points not extracted"}
	}
	if actionItems == nil {
		actionItems = []string{}
	}

	return &entity.Summary{
		Summary:     summary,
		KeyPoints:   keyPoints,
		ActionItems: actionItems,
	}
}

func staticFallback() *entity.Summary {
	return &entity.Summary{
		Summary:     "Could not generate AI summary",
		KeyPoints:   []string{},
		ActionItems: []string{},
	}
}

func normalize(s *entity.Summary) {
	if s.KeyPoints == nil {
		s.KeyPoints = []string{}
	}
	if s.ActionItems == nil {
		s.ActionItems = []string{}
	}
}
