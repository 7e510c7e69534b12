package model

// Stage score defaults applied when a model response cannot be parsed.
// Every stage result always carries usable numeric fields so the aggregator
// never sees an absent score.
const (
	FallbackScore             = 50
	FallbackExpenseConfidence = 0
)

// MarketAnalysis is the market stage output. Fallback is true when the model
// response could not be parsed; the scores then hold defaults and Insights
// holds the raw model text.
type MarketAnalysis struct {
	Score            int    `json:"score"`
	DemographicScore int    `json:"demographicScore"`
	CompetitionScore int    `json:"competitionScore"`
	OpportunityScore int    `json:"opportunityScore"`
	Insights         string `json:"insights"`
	Fallback         bool   `json:"fallback,omitempty"`
}

// FinancialAnalysis is the financial stage output.
type FinancialAnalysis struct {
	Score      int      `json:"score"`
	CapRatePct *float64 `json:"capRatePct,omitempty"`
	NOIAnnual  *float64 `json:"noiAnnual,omitempty"`
	CoCROIPct  *float64 `json:"cocRoiPct,omitempty"`
	Insights   string   `json:"insights"`
	Fallback   bool     `json:"fallback,omitempty"`
}

// RiskAssessment is the risk stage output. A higher Score means more risk.
type RiskAssessment struct {
	Score       int      `json:"score"`
	RiskFactors []string `json:"riskFactors,omitempty"`
	Insights    string   `json:"insights"`
	Fallback    bool     `json:"fallback,omitempty"`
}

// RevenueProjection is the revenue-optimization stage output.
type RevenueProjection struct {
	Score           int      `json:"score"`
	ProjectedAnnual *float64 `json:"projectedAnnual,omitempty"`
	Opportunities   []string `json:"opportunities,omitempty"`
	Insights        string   `json:"insights"`
	Fallback        bool     `json:"fallback,omitempty"`
}

// ExpenseValidation is the verdict for a single reported expense line.
// The validator returns exactly one of these per input line, in input order,
// even when the underlying model call failed (Confidence 0).
type ExpenseValidation struct {
	ExpenseName  string  `json:"expenseName"`
	AmountAnnual float64 `json:"amountAnnual"`
	IsReasonable bool    `json:"isReasonable"`
	Confidence   int     `json:"confidence"`
	Notes        string  `json:"notes,omitempty"`
}

// Recommendation is one prioritized action item.
type Recommendation struct {
	Category         string   `json:"category"`
	Priority         int      `json:"priority"`   // 1 (highest) to 5
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ImpactScore      int      `json:"impactScore"` // 0-100
	Difficulty       int      `json:"difficulty"`  // 1 (easy) to 5
	EstimatedBenefit *float64 `json:"estimatedBenefit,omitempty"`
	Timeframe        string   `json:"timeframe,omitempty"`
}

// Analysis is the full synchronous response payload for one pipeline run.
type Analysis struct {
	Market          MarketAnalysis      `json:"market"`
	Financial       FinancialAnalysis   `json:"financial"`
	Risk            RiskAssessment      `json:"risk"`
	Revenue         RevenueProjection   `json:"revenue"`
	Expenses        []ExpenseValidation `json:"expenses"`
	Recommendations []Recommendation    `json:"recommendations"`
	Overall         int                 `json:"overall"`
}
