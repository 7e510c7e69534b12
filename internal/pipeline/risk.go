package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/deal-analyzer/internal/model"
)

const riskSystemPrompt = `You are a laundromat acquisition risk assessor. Identify what could go wrong with this deal: lease exposure, equipment age, income concentration, market decline, deferred maintenance. Respond with a valid JSON object only:
{"score": <0-100 where 0 is no risk and 100 is extreme risk>, "riskFactors": ["<specific risk factor>", ...], "insights": "<2-4 sentences summarizing the risk picture>"}`

const riskUserPrompt = `Assess the risks of this laundromat deal.

%s
%s
List the concrete risk factors and score the overall risk. Higher score means more risk.`

// assessRisk runs the risk assessment stage. Score semantics are inverted
// relative to the other stages: higher means worse.
func (p *Pipeline) assessRisk(ctx context.Context, snap model.DealSnapshot, standards *model.StandardsContext) model.RiskAssessment {
	prompt := fmt.Sprintf(riskUserPrompt, renderSnapshot(snap), renderStandards(standards))

	text, err := p.callModel(ctx, "risk", riskSystemPrompt, prompt, 0.2)
	if err != nil {
		zap.L().Warn("risk: stage failed, using fallback",
			zap.String("deal_id", snap.DealID), zap.Error(err))
		return riskFallback("risk assessment unavailable: " + err.Error())
	}

	parsed, ok := decodeStage[model.RiskAssessment](text)
	if !ok {
		zap.L().Warn("risk: unparseable model output, using fallback",
			zap.String("deal_id", snap.DealID))
		return riskFallback(truncate(text, 500))
	}

	parsed.Score = clampScore(parsed.Score)
	return parsed
}

func riskFallback(insights string) model.RiskAssessment {
	return model.RiskAssessment{
		Score:    model.FallbackScore,
		Insights: insights,
		Fallback: true,
	}
}
