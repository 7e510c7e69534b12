package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/deal-analyzer/internal/model"
)

const recommendSystemPrompt = `You are a laundromat acquisition advisor. Given completed market, financial, and risk analyses of a deal, produce 5 to 10 prioritized, actionable recommendations for the prospective buyer. Respond with a valid JSON object only:
{"recommendations": [{"category": "<negotiation|operations|financing|due_diligence|growth>", "priority": <1-5, 1 highest>, "title": "<short title>", "description": "<what to do and why>", "impactScore": <0-100>, "difficulty": <1-5, 1 easiest>, "estimatedBenefit": <annual dollar benefit or null>, "timeframe": "<e.g. pre-close, 0-3 months>"}, ...]}`

const recommendUserPrompt = `Deal facts:
%s
Market analysis (score %d): %s

Financial analysis (score %d): %s

Risk assessment (score %d, higher is riskier): %s
Risk factors: %s
%s
Produce the prioritized recommendation list.`

// recommendationList is the wire shape of the synthesizer response.
type recommendationList struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

// synthesizeRecommendations turns the completed stage analyses into a
// prioritized action list. Never returns an empty slice: when the model
// call fails or parses to nothing, a single generic review item stands in.
func (p *Pipeline) synthesizeRecommendations(ctx context.Context, snap model.DealSnapshot, analysis *model.Analysis) []model.Recommendation {
	riskFactors := "none listed"
	if len(analysis.Risk.RiskFactors) > 0 {
		riskFactors = strings.Join(analysis.Risk.RiskFactors, "; ")
	}

	revenueSection := ""
	if p.cfg.Pipeline.IncludeRevenueInRecommendations {
		revenueSection = fmt.Sprintf("\nRevenue upside (score %d): %s\nOpportunities: %s\n",
			analysis.Revenue.Score, analysis.Revenue.Insights,
			strings.Join(analysis.Revenue.Opportunities, "; "))
	}

	prompt := fmt.Sprintf(recommendUserPrompt,
		renderSnapshot(snap),
		analysis.Market.Score, analysis.Market.Insights,
		analysis.Financial.Score, analysis.Financial.Insights,
		analysis.Risk.Score, analysis.Risk.Insights,
		riskFactors,
		revenueSection,
	)

	text, err := p.callModel(ctx, "recommendations", recommendSystemPrompt, prompt, 0.3)
	if err != nil {
		zap.L().Warn("recommendations: synthesis failed, using fallback",
			zap.String("deal_id", snap.DealID), zap.Error(err))
		return fallbackRecommendations("")
	}

	parsed, ok := decodeStage[recommendationList](text)
	if !ok {
		zap.L().Warn("recommendations: unparseable output, using fallback",
			zap.String("deal_id", snap.DealID))
		return fallbackRecommendations(text)
	}
	if len(parsed.Recommendations) == 0 {
		zap.L().Warn("recommendations: empty output, using fallback",
			zap.String("deal_id", snap.DealID))
		return fallbackRecommendations("")
	}

	recs := parsed.Recommendations
	for i := range recs {
		recs[i].Priority = clampBetween(recs[i].Priority, 1, 5)
		recs[i].Difficulty = clampBetween(recs[i].Difficulty, 1, 5)
		recs[i].ImpactScore = clampScore(recs[i].ImpactScore)
	}
	return recs
}

// fallbackRecommendations is the guaranteed-non-empty stand-in when
// synthesis produces nothing usable. When the model responded but the
// output did not parse, the raw text becomes the description so the
// advice is not lost.
func fallbackRecommendations(raw string) []model.Recommendation {
	description := "Automated recommendation synthesis was unavailable for this deal. Review the stage analyses manually before proceeding."
	if strings.TrimSpace(raw) != "" {
		description = truncate(strings.TrimSpace(raw), 500)
	}
	return []model.Recommendation{
		{
			Category:    "due_diligence",
			Priority:    1,
			Title:       "Review Analysis",
			Description: description,
			ImpactScore: 50,
			Difficulty:  1,
			Timeframe:   "pre-close",
		},
	}
}

func clampBetween(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
