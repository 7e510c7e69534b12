package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/sells-group/deal-analyzer/pkg/anthropic"
)

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown fences or surrounding prose.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// decodeStage unmarshals a model response into the stage's result type.
// Returns false when the text does not contain a parseable JSON object, in
// which case the caller substitutes its fallback result rather than failing
// the analysis.
func decodeStage[T any](text string) (T, bool) {
	var out T
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return out, false
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// truncate shortens raw model output for inclusion in fallback insights.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
