package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/deal-analyzer/internal/config"
	"github.com/sells-group/deal-analyzer/internal/model"
	"github.com/sells-group/deal-analyzer/internal/store"
	"github.com/sells-group/deal-analyzer/pkg/anthropic"
	"github.com/sells-group/deal-analyzer/pkg/standards"
)

// Pipeline orchestrates one deal analysis run end to end.
type Pipeline struct {
	cfg       *config.Config
	store     store.Store
	anthropic anthropic.Client
	standards standards.Client // nil when benchmark lookup is disabled
	usage     *runUsage        // run-scoped; Run works on a copy carrying its own
}

// New creates a Pipeline. standardsClient may be nil; every stage tolerates
// a missing benchmark context.
func New(cfg *config.Config, st store.Store, aiClient anthropic.Client, standardsClient standards.Client) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		store:     st,
		anthropic: aiClient,
		standards: standardsClient,
	}
}

// RunResult pairs the synchronous analysis with a handle on the background
// persistence fan-out. Persisted closes once every write has been attempted.
type RunResult struct {
	Analysis  *model.Analysis
	Usage     anthropic.TokenUsage
	Persisted <-chan struct{}
}

// Run executes the full analysis for one deal: normalize the input, resolve
// benchmarks, run the four analysis stages and the per-expense validation
// fan-out concurrently, synthesize recommendations, aggregate the overall
// score, and kick off background persistence.
//
// Stage and validation failures degrade to tagged fallback results; Run
// itself fails only on context cancellation before the analysis completes.
func (p *Pipeline) Run(ctx context.Context, input model.DealInput, dealID, userID string) (*RunResult, error) {
	start := time.Now()
	log := zap.L().With(zap.String("deal_id", dealID), zap.String("user_id", userID))
	log.Info("pipeline: starting deal analysis")

	snap := BuildSnapshot(input, dealID, userID)
	benchmarks := p.resolveStandards(ctx, snap)

	// Copy the pipeline so this run's usage total stays isolated from
	// concurrent requests.
	run := *p
	run.usage = &runUsage{}

	analysis := &model.Analysis{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(run.cfg.Pipeline.StageConcurrency)

	g.Go(func() error {
		analysis.Market = run.analyzeMarket(gctx, snap, benchmarks)
		return nil
	})
	g.Go(func() error {
		analysis.Financial = run.analyzeFinancial(gctx, snap, benchmarks)
		return nil
	})
	g.Go(func() error {
		analysis.Risk = run.assessRisk(gctx, snap, benchmarks)
		return nil
	})
	g.Go(func() error {
		analysis.Revenue = run.projectRevenue(gctx, snap, benchmarks)
		return nil
	})
	g.Go(func() error {
		analysis.Expenses = run.validateExpenses(gctx, snap, benchmarks)
		return nil
	})
	// Stage funcs never return errors; Wait only synchronizes the writes.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis.Recommendations = run.synthesizeRecommendations(ctx, snap, analysis)
	analysis.Overall = OverallScore(analysis.Market.Score, analysis.Financial.Score, analysis.Risk.Score)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	persisted := run.persistResults(ctx, snap, analysis)

	usage := run.usage.snapshot()
	log.Info("pipeline: deal analysis complete",
		zap.Int("overall_score", analysis.Overall),
		zap.Int("market_score", analysis.Market.Score),
		zap.Int("financial_score", analysis.Financial.Score),
		zap.Int("risk_score", analysis.Risk.Score),
		zap.Int("revenue_score", analysis.Revenue.Score),
		zap.Int("expenses_validated", len(analysis.Expenses)),
		zap.Int("recommendations", len(analysis.Recommendations)),
		zap.Int64("input_tokens", usage.InputTokens),
		zap.Int64("output_tokens", usage.OutputTokens),
		zap.Float64("estimated_cost_usd", usage.EstimateCost(run.cfg.Anthropic.Model)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &RunResult{Analysis: analysis, Usage: usage, Persisted: persisted}, nil
}

// resolveStandards looks up industry benchmarks for the deal's ZIP code.
// Every failure mode resolves to nil: no client, no ZIP in the address,
// lookup error, or no coverage for the location.
func (p *Pipeline) resolveStandards(ctx context.Context, snap model.DealSnapshot) *model.StandardsContext {
	if p.standards == nil {
		return nil
	}
	if snap.Zip == "" {
		zap.L().Debug("standards: no ZIP in address, skipping lookup",
			zap.String("deal_id", snap.DealID))
		return nil
	}

	sc, err := p.standards.Lookup(ctx, snap.Zip)
	if err != nil {
		zap.L().Warn("standards: lookup failed, continuing without benchmarks",
			zap.String("deal_id", snap.DealID),
			zap.String("zip", snap.Zip),
			zap.Error(err))
		return nil
	}
	return sc
}
