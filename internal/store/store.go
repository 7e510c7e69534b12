package store

import (
	"context"

	"github.com/sells-group/deal-analyzer/internal/model"
)

// Store defines the persistence interface for analysis results. Every Save
// operation is an independent upsert: callers may issue them concurrently
// and a failure in one never affects another.
type Store interface {
	SaveDealAnalysis(ctx context.Context, rec model.DealAnalysisRecord) error
	SaveMarketData(ctx context.Context, rec model.MarketDataRecord) error
	SaveExpenseValidation(ctx context.Context, rec model.ExpenseValidationRecord) error
	SaveRevenueProjection(ctx context.Context, rec model.RevenueProjectionRecord) error
	SaveRiskAssessment(ctx context.Context, rec model.RiskAssessmentRecord) error
	SaveRecommendation(ctx context.Context, rec model.RecommendationRecord) error

	// RecordFailedWrite notes a background write that could not be completed
	// so it can be inspected and replayed later. Best-effort.
	RecordFailedWrite(ctx context.Context, entry FailedWrite) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// FailedWrite captures one persistence task that failed after the response
// was already returned to the caller.
type FailedWrite struct {
	Task    string // e.g. "market_data", "recommendation"
	DealID  string
	UserID  string
	Payload []byte // JSON snapshot of the record that failed to write
	Error   string
}
