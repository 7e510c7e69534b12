package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/deal-analyzer/internal/model"
)

const revenueSystemPrompt = `You are a laundromat revenue optimization consultant. Identify untapped revenue for this location: wash-dry-fold service, pickup and delivery, vending, vend price adjustments, extended hours, ancillary services. Respond with a valid JSON object only:
{"score": <0-100 upside potential score>, "projectedAnnual": <realistic projected annual gross in dollars or null>, "opportunities": ["<specific opportunity>", ...], "insights": "<2-4 sentences on revenue upside>"}`

const revenueUserPrompt = `Find the revenue upside in this laundromat deal.

%s
%s
Score the upside potential and project a realistic annual gross if the opportunities are executed.`

// projectRevenue runs the revenue-optimization stage. A slightly higher
// temperature than the analytical stages: opportunity brainstorming
// benefits from variety.
func (p *Pipeline) projectRevenue(ctx context.Context, snap model.DealSnapshot, standards *model.StandardsContext) model.RevenueProjection {
	prompt := fmt.Sprintf(revenueUserPrompt, renderSnapshot(snap), renderStandards(standards))

	text, err := p.callModel(ctx, "revenue", revenueSystemPrompt, prompt, 0.5)
	if err != nil {
		zap.L().Warn("revenue: stage failed, using fallback",
			zap.String("deal_id", snap.DealID), zap.Error(err))
		return revenueFallback("revenue projection unavailable: " + err.Error())
	}

	parsed, ok := decodeStage[model.RevenueProjection](text)
	if !ok {
		zap.L().Warn("revenue: unparseable model output, using fallback",
			zap.String("deal_id", snap.DealID))
		return revenueFallback(truncate(text, 500))
	}

	parsed.Score = clampScore(parsed.Score)
	return parsed
}

func revenueFallback(insights string) model.RevenueProjection {
	return model.RevenueProjection{
		Score:    model.FallbackScore,
		Insights: insights,
		Fallback: true,
	}
}
