package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/deal-analyzer/internal/model"
	"github.com/sells-group/deal-analyzer/pkg/anthropic"
)

func TestExtractText(t *testing.T) {
	resp := &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{
			{Type: "text", Text: "first"},
			{Type: "text", Text: "second"},
		},
	}
	assert.Equal(t, "first\nsecond", extractText(resp))
	assert.Equal(t, "", extractText(nil))
	assert.Equal(t, "", extractText(&anthropic.MessageResponse{}))
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"score": 80}`, `{"score": 80}`},
		{"json fence", "```json\n{\"score\": 80}\n```", `{"score": 80}`},
		{"bare fence", "```\n{\"score\": 80}\n```", `{"score": 80}`},
		{"surrounding prose", `Here you go: {"score": 80} hope that helps`, `{"score": 80}`},
		{"no object", "no json here", "no json here"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.input))
		})
	}
}

func TestDecodeStage(t *testing.T) {
	parsed, ok := decodeStage[model.MarketAnalysis]("```json\n{\"score\": 82, \"insights\": \"strong\"}\n```")
	assert.True(t, ok)
	assert.Equal(t, 82, parsed.Score)
	assert.Equal(t, "strong", parsed.Insights)

	_, ok = decodeStage[model.MarketAnalysis]("the market looks fine to me")
	assert.False(t, ok)

	_, ok = decodeStage[model.MarketAnalysis]("")
	assert.False(t, ok)

	// Type-mismatched fields fail strict decoding.
	_, ok = decodeStage[model.MarketAnalysis](`{"score": "eighty"}`)
	assert.False(t, ok)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 5))
	assert.Equal(t, "trimmed", truncate("  trimmed  ", 10))
}
