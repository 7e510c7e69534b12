package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysis_JSONShape(t *testing.T) {
	analysis := Analysis{
		Market:    MarketAnalysis{Score: 80},
		Financial: FinancialAnalysis{Score: 60},
		Risk:      RiskAssessment{Score: 40},
		Revenue:   RevenueProjection{Score: 75},
		Expenses: []ExpenseValidation{
			{ExpenseName: "Rent", AmountAnnual: 48000, IsReasonable: true, Confidence: 90},
		},
		Recommendations: []Recommendation{
			{Category: "negotiation", Priority: 1, Title: "Extend lease", Description: "d", ImpactScore: 80, Difficulty: 2},
		},
		Overall: 66,
	}

	raw, err := json.Marshal(analysis)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))

	for _, key := range []string{"market", "financial", "risk", "revenue", "expenses", "recommendations", "overall"} {
		assert.Contains(t, decoded, key)
	}

	// Fallback flag stays out of the payload unless set.
	assert.NotContains(t, string(raw), "fallback")

	var roundTrip Analysis
	require.NoError(t, json.Unmarshal(raw, &roundTrip))
	assert.Equal(t, analysis, roundTrip)
}

func TestExpenseValidation_JSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(ExpenseValidation{ExpenseName: "Rent", AmountAnnual: 48000, IsReasonable: true, Confidence: 90})
	require.NoError(t, err)

	assert.JSONEq(t, `{"expenseName": "Rent", "amountAnnual": 48000, "isReasonable": true, "confidence": 90}`, string(raw))
}
