package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/deal-analyzer/internal/config"
	"github.com/sells-group/deal-analyzer/internal/model"
	"github.com/sells-group/deal-analyzer/internal/store"
	"github.com/sells-group/deal-analyzer/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Standards Mock ---

type mockStandardsClient struct {
	mock.Mock
}

func (m *mockStandardsClient) Lookup(ctx context.Context, zip string) (*model.StandardsContext, error) {
	args := m.Called(ctx, zip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StandardsContext), args.Error(1)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveDealAnalysis(ctx context.Context, rec model.DealAnalysisRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) SaveMarketData(ctx context.Context, rec model.MarketDataRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) SaveExpenseValidation(ctx context.Context, rec model.ExpenseValidationRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) SaveRevenueProjection(ctx context.Context, rec model.RevenueProjectionRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) SaveRiskAssessment(ctx context.Context, rec model.RiskAssessmentRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) SaveRecommendation(ctx context.Context, rec model.RecommendationRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) RecordFailedWrite(ctx context.Context, entry store.FailedWrite) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

// --- Helpers ---

// testConfig returns a config suitable for unit tests: single attempt,
// short timeouts, serial-friendly concurrency limits.
func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			Model:       "claude-sonnet-4-5-20250929",
			MaxTokens:   1024,
			MaxAttempts: 1,
		},
		Pipeline: config.PipelineConfig{
			StageTimeoutSecs:   30,
			StageConcurrency:   4,
			ExpenseConcurrency: 3,
			PersistTimeoutSecs: 30,
		},
	}
}

// textResponse wraps a raw model reply in a MessageResponse.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}
}

func f64(v float64) *float64 { return &v }

// testSnapshot builds a representative normalized snapshot.
func testSnapshot() model.DealSnapshot {
	return BuildSnapshot(model.DealInput{
		AskingPrice:       f64(350000),
		GrossIncomeAnnual: f64(220000),
		AnnualNet:         f64(80000),
		FacilitySizeSqft:  f64(2400),
		PropertyAddress:   "123 Main St, Springfield, IL 62704",
		Expenses: []model.ExpenseInput{
			{ExpenseName: "Rent", AmountAnnual: f64(48000)},
			{ExpenseName: "Utilities", AmountAnnual: f64(30000)},
		},
	}, "deal-1", "user-1")
}
