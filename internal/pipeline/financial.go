package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/deal-analyzer/internal/model"
)

const financialSystemPrompt = `You are a laundromat acquisition financial analyst. Evaluate deal economics: valuation against asking price, cap rate, net operating income, and cash-on-cash return. Compare against any provided industry benchmarks. Respond with a valid JSON object only:
{"score": <0-100 financial health score>, "capRatePct": <cap rate percentage or null>, "noiAnnual": <annual NOI in dollars or null>, "cocRoiPct": <cash-on-cash ROI percentage or null>, "insights": "<2-4 sentences of financial insights>"}
Use null for any metric the provided figures do not support. Never invent numbers.`

const financialUserPrompt = `Analyze the financials of this laundromat deal.

%s
%s
Score the deal's financial health and derive cap rate, NOI, and cash-on-cash ROI where the figures allow.`

// analyzeFinancial runs the financial analysis stage with the same
// degrade-to-fallback contract as the other stages. Derived metrics stay
// nil when the model could not compute them.
func (p *Pipeline) analyzeFinancial(ctx context.Context, snap model.DealSnapshot, standards *model.StandardsContext) model.FinancialAnalysis {
	prompt := fmt.Sprintf(financialUserPrompt, renderSnapshot(snap), renderStandards(standards))

	text, err := p.callModel(ctx, "financial", financialSystemPrompt, prompt, 0.2)
	if err != nil {
		zap.L().Warn("financial: stage failed, using fallback",
			zap.String("deal_id", snap.DealID), zap.Error(err))
		return financialFallback("financial analysis unavailable: " + err.Error())
	}

	parsed, ok := decodeStage[model.FinancialAnalysis](text)
	if !ok {
		zap.L().Warn("financial: unparseable model output, using fallback",
			zap.String("deal_id", snap.DealID))
		return financialFallback(truncate(text, 500))
	}

	parsed.Score = clampScore(parsed.Score)
	return parsed
}

func financialFallback(insights string) model.FinancialAnalysis {
	return model.FinancialAnalysis{
		Score:    model.FallbackScore,
		Insights: insights,
		Fallback: true,
	}
}
