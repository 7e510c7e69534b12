package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/deal-analyzer/internal/model"
)

const marketSystemPrompt = `You are a laundromat market analyst. Evaluate the market context of a laundromat acquisition: neighborhood demographics, competitive density, and growth opportunity. Respond with a valid JSON object only:
{"score": <0-100 overall market score>, "demographicScore": <0-100>, "competitionScore": <0-100>, "opportunityScore": <0-100>, "insights": "<2-4 sentences of market insights>"}`

const marketUserPrompt = `Analyze the market for this laundromat deal.

%s
%s
Score the market overall and by demographics, competition, and opportunity.`

// analyzeMarket runs the market analysis stage. Never fails the pipeline:
// call errors and unparseable output both degrade to a tagged fallback
// result with default scores.
func (p *Pipeline) analyzeMarket(ctx context.Context, snap model.DealSnapshot, standards *model.StandardsContext) model.MarketAnalysis {
	prompt := fmt.Sprintf(marketUserPrompt, renderSnapshot(snap), renderStandards(standards))

	text, err := p.callModel(ctx, "market", marketSystemPrompt, prompt, 0.3)
	if err != nil {
		zap.L().Warn("market: stage failed, using fallback",
			zap.String("deal_id", snap.DealID), zap.Error(err))
		return marketFallback("market analysis unavailable: " + err.Error())
	}

	parsed, ok := decodeStage[model.MarketAnalysis](text)
	if !ok {
		zap.L().Warn("market: unparseable model output, using fallback",
			zap.String("deal_id", snap.DealID))
		return marketFallback(truncate(text, 500))
	}

	parsed.Score = clampScore(parsed.Score)
	parsed.DemographicScore = clampScore(parsed.DemographicScore)
	parsed.CompetitionScore = clampScore(parsed.CompetitionScore)
	parsed.OpportunityScore = clampScore(parsed.OpportunityScore)
	return parsed
}

func marketFallback(insights string) model.MarketAnalysis {
	return model.MarketAnalysis{
		Score:            model.FallbackScore,
		DemographicScore: model.FallbackScore,
		CompetitionScore: model.FallbackScore,
		OpportunityScore: model.FallbackScore,
		Insights:         insights,
		Fallback:         true,
	}
}
