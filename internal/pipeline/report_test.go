package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/deal-analyzer/internal/model"
)

func TestFormatReport(t *testing.T) {
	analysis := &model.Analysis{
		Market:    model.MarketAnalysis{Score: 80, DemographicScore: 85, CompetitionScore: 70, OpportunityScore: 82, Insights: "good area"},
		Financial: model.FinancialAnalysis{Score: 60, CapRatePct: f64(22.9), NOIAnnual: f64(80000), Insights: "priced fairly"},
		Risk:      model.RiskAssessment{Score: 40, RiskFactors: []string{"short lease"}, Insights: "moderate"},
		Revenue:   model.RevenueProjection{Score: 75, ProjectedAnnual: f64(1265000), Opportunities: []string{"delivery"}},
		Expenses: []model.ExpenseValidation{
			{ExpenseName: "Rent", AmountAnnual: 48000, IsReasonable: true, Confidence: 90, Notes: "in range"},
		},
		Recommendations: []model.Recommendation{
			{Category: "negotiation", Priority: 1, Title: "Extend lease", Description: "Lock in the term.", ImpactScore: 80, Difficulty: 2, EstimatedBenefit: f64(12000), Timeframe: "pre-close"},
		},
		Overall: 66,
	}

	out := FormatReport(testSnapshot(), analysis)

	assert.Contains(t, out, "Overall score: 66/100")
	assert.Contains(t, out, "Market: 80/100")
	assert.Contains(t, out, "cap rate 22.9%")
	assert.Contains(t, out, "! short lease")
	// Grouped currency formatting.
	assert.Contains(t, out, "$1,265,000/yr")
	assert.Contains(t, out, "1. [P1] Extend lease")
	assert.Contains(t, out, "estimated benefit $12,000/yr")
	assert.NotContains(t, out, "[fallback]")
}

func TestFormatReport_MarksFallbacks(t *testing.T) {
	analysis := &model.Analysis{
		Market:          model.MarketAnalysis{Score: 50, Fallback: true},
		Financial:       model.FinancialAnalysis{Score: 50, Fallback: true},
		Risk:            model.RiskAssessment{Score: 50},
		Revenue:         model.RevenueProjection{Score: 50},
		Recommendations: fallbackRecommendations(""),
		Overall:         50,
	}

	out := FormatReport(BuildSnapshot(model.DealInput{}, "d", "u"), analysis)

	assert.Contains(t, out, "Market: 50/100 [fallback]")
	assert.Contains(t, out, "Financial: 50/100 [fallback]")
	assert.Contains(t, out, "Review Analysis")
}
