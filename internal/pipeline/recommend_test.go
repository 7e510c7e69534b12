package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-analyzer/internal/model"
	"github.com/sells-group/deal-analyzer/pkg/anthropic"
)

func baseAnalysis() *model.Analysis {
	return &model.Analysis{
		Market:    model.MarketAnalysis{Score: 70, Insights: "solid trade area"},
		Financial: model.FinancialAnalysis{Score: 60, Insights: "fair price"},
		Risk:      model.RiskAssessment{Score: 40, RiskFactors: []string{"short lease"}, Insights: "watch the lease"},
		Revenue:   model.RevenueProjection{Score: 75, Opportunities: []string{"delivery"}, Insights: "upside exists"},
	}
}

func TestSynthesizeRecommendations_ParsesAndClamps(t *testing.T) {
	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(textResponse(`{"recommendations": [
			{"category": "negotiation", "priority": 0, "title": "Renegotiate lease", "description": "Extend before close.", "impactScore": 130, "difficulty": 9},
			{"category": "operations", "priority": 3, "title": "Raise vend prices", "description": "Below market.", "impactScore": 60, "difficulty": 2, "estimatedBenefit": 12000, "timeframe": "0-3 months"}
		]}`), nil).Once()

	p := New(testConfig(), nil, aiClient, nil)
	recs := p.synthesizeRecommendations(context.Background(), testSnapshot(), baseAnalysis())

	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].Priority)
	assert.Equal(t, 100, recs[0].ImpactScore)
	assert.Equal(t, 5, recs[0].Difficulty)
	assert.Equal(t, "Raise vend prices", recs[1].Title)
	require.NotNil(t, recs[1].EstimatedBenefit)
	assert.Equal(t, 12000.0, *recs[1].EstimatedBenefit)
}

func TestSynthesizeRecommendations_NeverEmpty(t *testing.T) {
	tests := []struct {
		name     string
		resp     *anthropic.MessageResponse
		err      error
		wantDesc string
	}{
		{"call error", nil, eris.New("timeout"), "synthesis was unavailable"},
		{"unparseable", textResponse("I'd suggest looking at the lease."), nil, "I'd suggest looking at the lease."},
		{"empty list", textResponse(`{"recommendations": []}`), nil, "synthesis was unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aiClient := &mockAnthropicClient{}
			aiClient.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
				Return(tt.resp, tt.err).Once()

			p := New(testConfig(), nil, aiClient, nil)
			recs := p.synthesizeRecommendations(context.Background(), testSnapshot(), baseAnalysis())

			require.Len(t, recs, 1)
			assert.Equal(t, "Review Analysis", recs[0].Title)
			assert.Equal(t, 1, recs[0].Priority)
			assert.Contains(t, recs[0].Description, tt.wantDesc)
		})
	}
}

// A prose response that fails to parse still reaches the caller as the
// fallback recommendation's description.
func TestSynthesizeRecommendations_FallbackCarriesRawText(t *testing.T) {
	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(textResponse("Honestly, just renegotiate the lease before close."), nil).Once()

	p := New(testConfig(), nil, aiClient, nil)
	recs := p.synthesizeRecommendations(context.Background(), testSnapshot(), baseAnalysis())

	require.Len(t, recs, 1)
	assert.Equal(t, "Honestly, just renegotiate the lease before close.", recs[0].Description)
}

func TestSynthesizeRecommendations_RevenueSectionGated(t *testing.T) {
	var captured anthropic.MessageRequest
	capture := mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		captured = req
		return true
	})

	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", mock.Anything, capture).
		Return(textResponse(`{"recommendations": [{"category": "growth", "priority": 2, "title": "t", "description": "d", "impactScore": 50, "difficulty": 2}]}`), nil)

	// Default config: revenue stays out of the prompt.
	cfg := testConfig()
	p := New(cfg, nil, aiClient, nil)
	p.synthesizeRecommendations(context.Background(), testSnapshot(), baseAnalysis())
	assert.False(t, strings.Contains(captured.Messages[0].Content, "Revenue upside"))

	// Flag on: revenue section included.
	cfg.Pipeline.IncludeRevenueInRecommendations = true
	p.synthesizeRecommendations(context.Background(), testSnapshot(), baseAnalysis())
	assert.True(t, strings.Contains(captured.Messages[0].Content, "Revenue upside"))
}
