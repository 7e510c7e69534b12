package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-analyzer/internal/model"
)

func TestAnalyzeFinancial_ParsesDerivedMetrics(t *testing.T) {
	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(textResponse(`{"score": 64, "capRatePct": 22.9, "noiAnnual": 80000, "cocRoiPct": null, "insights": "strong cap rate"}`), nil).Once()

	p := New(testConfig(), nil, aiClient, nil)
	result := p.analyzeFinancial(context.Background(), testSnapshot(), nil)

	assert.Equal(t, 64, result.Score)
	require.NotNil(t, result.CapRatePct)
	assert.InDelta(t, 22.9, *result.CapRatePct, 0.001)
	require.NotNil(t, result.NOIAnnual)
	assert.Equal(t, 80000.0, *result.NOIAnnual)
	assert.Nil(t, result.CoCROIPct)
	assert.False(t, result.Fallback)
}

func TestAnalyzeFinancial_FallbackKeepsMetricsNil(t *testing.T) {
	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(textResponse("not json"), nil).Once()

	p := New(testConfig(), nil, aiClient, nil)
	result := p.analyzeFinancial(context.Background(), testSnapshot(), nil)

	assert.True(t, result.Fallback)
	assert.Equal(t, model.FallbackScore, result.Score)
	assert.Nil(t, result.CapRatePct)
	assert.Nil(t, result.NOIAnnual)
}

func TestAssessRisk_ParsesFactors(t *testing.T) {
	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(textResponse(`{"score": 35, "riskFactors": ["short lease", "aging washers"], "insights": "manageable"}`), nil).Once()

	p := New(testConfig(), nil, aiClient, nil)
	result := p.assessRisk(context.Background(), testSnapshot(), nil)

	assert.Equal(t, 35, result.Score)
	assert.Equal(t, []string{"short lease", "aging washers"}, result.RiskFactors)
	assert.False(t, result.Fallback)
}

func TestAssessRisk_CallErrorFallsBack(t *testing.T) {
	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(nil, eris.New("upstream down")).Once()

	p := New(testConfig(), nil, aiClient, nil)
	result := p.assessRisk(context.Background(), testSnapshot(), nil)

	assert.True(t, result.Fallback)
	assert.Equal(t, model.FallbackScore, result.Score)
	assert.Empty(t, result.RiskFactors)
}

func TestProjectRevenue_ParsesOpportunities(t *testing.T) {
	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(textResponse(`{"score": 72, "projectedAnnual": 265000, "opportunities": ["wash-dry-fold", "delivery"], "insights": "clear upside"}`), nil).Once()

	p := New(testConfig(), nil, aiClient, nil)
	result := p.projectRevenue(context.Background(), testSnapshot(), nil)

	assert.Equal(t, 72, result.Score)
	require.NotNil(t, result.ProjectedAnnual)
	assert.Equal(t, 265000.0, *result.ProjectedAnnual)
	assert.Len(t, result.Opportunities, 2)
	assert.False(t, result.Fallback)
}

func TestProjectRevenue_UnparseableFallsBack(t *testing.T) {
	aiClient := &mockAnthropicClient{}
	aiClient.On("CreateMessage", mock.Anything, mock.AnythingOfType("anthropic.MessageRequest")).
		Return(textResponse("```\nnope\n```"), nil).Once()

	p := New(testConfig(), nil, aiClient, nil)
	result := p.projectRevenue(context.Background(), testSnapshot(), nil)

	assert.True(t, result.Fallback)
	assert.Equal(t, model.FallbackScore, result.Score)
	assert.Nil(t, result.ProjectedAnnual)
}
