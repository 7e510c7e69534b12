package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/deal-analyzer/internal/model"
	"github.com/sells-group/deal-analyzer/internal/store"
)

// persistResults writes every analysis record in the background, after the
// synchronous response has been produced. The returned channel closes when
// all writes have been attempted; callers that don't care may discard it.
//
// Writes are independent: one failure never stops the others, and no
// failure ever propagates to the request path. Failed writes are logged and
// recorded for later replay.
func (p *Pipeline) persistResults(ctx context.Context, snap model.DealSnapshot, analysis *model.Analysis) <-chan struct{} {
	done := make(chan struct{})

	// Detach from the request context so an early client disconnect doesn't
	// abort persistence, but still bound the total time.
	bg := context.WithoutCancel(ctx)
	timeout := time.Duration(p.cfg.Pipeline.PersistTimeoutSecs) * time.Second

	go func() {
		defer close(done)

		pctx := bg
		if timeout > 0 {
			var cancel context.CancelFunc
			pctx, cancel = context.WithTimeout(bg, timeout)
			defer cancel()
		}

		var g errgroup.Group

		g.Go(func() error {
			rec := model.DealAnalysisRecord{
				DealID:         snap.DealID,
				UserID:         snap.UserID,
				MarketScore:    analysis.Market.Score,
				FinancialScore: analysis.Financial.Score,
				RiskScore:      analysis.Risk.Score,
				RevenueScore:   analysis.Revenue.Score,
				OverallScore:   analysis.Overall,
				Insights:       analysis.Financial.Insights,
			}
			p.writeRecord(pctx, "deal_analysis", snap, rec, func() error {
				return p.store.SaveDealAnalysis(pctx, rec)
			})
			return nil
		})

		g.Go(func() error {
			rec := model.MarketDataRecord{
				LocationKey:      snap.LocationKey,
				DealID:           snap.DealID,
				UserID:           snap.UserID,
				DemographicScore: analysis.Market.DemographicScore,
				CompetitionScore: analysis.Market.CompetitionScore,
				OpportunityScore: analysis.Market.OpportunityScore,
				Insights:         analysis.Market.Insights,
			}
			p.writeRecord(pctx, "market_data", snap, rec, func() error {
				return p.store.SaveMarketData(pctx, rec)
			})
			return nil
		})

		g.Go(func() error {
			for i, v := range analysis.Expenses {
				rec := model.ExpenseValidationRecord{
					DealID:     snap.DealID,
					UserID:     snap.UserID,
					Position:   i,
					Validation: v,
				}
				p.writeRecord(pctx, "expense_validation", snap, rec, func() error {
					return p.store.SaveExpenseValidation(pctx, rec)
				})
			}
			return nil
		})

		g.Go(func() error {
			rec := model.RevenueProjectionRecord{
				DealID:          snap.DealID,
				UserID:          snap.UserID,
				Score:           analysis.Revenue.Score,
				ProjectedAnnual: analysis.Revenue.ProjectedAnnual,
				Opportunities:   analysis.Revenue.Opportunities,
				Insights:        analysis.Revenue.Insights,
			}
			p.writeRecord(pctx, "revenue_projection", snap, rec, func() error {
				return p.store.SaveRevenueProjection(pctx, rec)
			})
			return nil
		})

		g.Go(func() error {
			rec := model.RiskAssessmentRecord{
				DealID:      snap.DealID,
				UserID:      snap.UserID,
				Score:       analysis.Risk.Score,
				RiskFactors: analysis.Risk.RiskFactors,
				Insights:    analysis.Risk.Insights,
			}
			p.writeRecord(pctx, "risk_assessment", snap, rec, func() error {
				return p.store.SaveRiskAssessment(pctx, rec)
			})
			return nil
		})

		g.Go(func() error {
			for i, rec := range analysis.Recommendations {
				row := model.RecommendationRecord{
					DealID:         snap.DealID,
					UserID:         snap.UserID,
					Position:       i,
					Recommendation: rec,
				}
				p.writeRecord(pctx, "recommendation", snap, row, func() error {
					return p.store.SaveRecommendation(pctx, row)
				})
			}
			return nil
		})

		_ = g.Wait()
		zap.L().Debug("persist: background writes complete",
			zap.String("deal_id", snap.DealID))
	}()

	return done
}

// writeRecord runs one background write, logging and dead-lettering on
// failure instead of returning an error.
func (p *Pipeline) writeRecord(ctx context.Context, task string, snap model.DealSnapshot, payload any, fn func() error) {
	err := fn()
	if err == nil {
		return
	}

	zap.L().Error("persist: background write failed",
		zap.String("task", task),
		zap.String("deal_id", snap.DealID),
		zap.String("user_id", snap.UserID),
		zap.Error(err))

	raw, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		raw = []byte(`{}`)
	}
	entry := store.FailedWrite{
		Task:    task,
		DealID:  snap.DealID,
		UserID:  snap.UserID,
		Payload: raw,
		Error:   err.Error(),
	}
	if dlqErr := p.store.RecordFailedWrite(ctx, entry); dlqErr != nil {
		zap.L().Error("persist: failed-write record also failed",
			zap.String("task", task),
			zap.String("deal_id", snap.DealID),
			zap.Error(dlqErr))
	}
}
