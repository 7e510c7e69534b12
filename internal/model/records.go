package model

// Persistence record kinds written by the background fan-out. Each record is
// self-contained and upserted independently; no write depends on another.

// DealAnalysisRecord is the summary row for one analyzed deal.
type DealAnalysisRecord struct {
	DealID         string `json:"dealId"`
	UserID         string `json:"userId"`
	MarketScore    int    `json:"marketScore"`
	FinancialScore int    `json:"financialScore"`
	RiskScore      int    `json:"riskScore"`
	RevenueScore   int    `json:"revenueScore"`
	OverallScore   int    `json:"overallScore"`
	Insights       string `json:"insights,omitempty"`
}

// MarketDataRecord is keyed by a normalized location so market intelligence
// accumulates per area rather than per deal.
type MarketDataRecord struct {
	LocationKey      string `json:"locationKey"`
	DealID           string `json:"dealId"`
	UserID           string `json:"userId"`
	DemographicScore int    `json:"demographicScore"`
	CompetitionScore int    `json:"competitionScore"`
	OpportunityScore int    `json:"opportunityScore"`
	Insights         string `json:"insights,omitempty"`
}

// ExpenseValidationRecord is one validated expense line. Position preserves
// the input ordering.
type ExpenseValidationRecord struct {
	DealID     string `json:"dealId"`
	UserID     string `json:"userId"`
	Position   int    `json:"position"`
	Validation ExpenseValidation
}

// RevenueProjectionRecord is the revenue-optimization stage row.
type RevenueProjectionRecord struct {
	DealID          string   `json:"dealId"`
	UserID          string   `json:"userId"`
	Score           int      `json:"score"`
	ProjectedAnnual *float64 `json:"projectedAnnual,omitempty"`
	Opportunities   []string `json:"opportunities,omitempty"`
	Insights        string   `json:"insights,omitempty"`
}

// RiskAssessmentRecord is the risk stage row.
type RiskAssessmentRecord struct {
	DealID      string   `json:"dealId"`
	UserID      string   `json:"userId"`
	Score       int      `json:"score"`
	RiskFactors []string `json:"riskFactors,omitempty"`
	Insights    string   `json:"insights,omitempty"`
}

// RecommendationRecord is one prioritized recommendation row. Position
// preserves the synthesized ordering.
type RecommendationRecord struct {
	DealID         string `json:"dealId"`
	UserID         string `json:"userId"`
	Position       int    `json:"position"`
	Recommendation Recommendation
}
