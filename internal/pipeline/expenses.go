package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/deal-analyzer/internal/model"
)

const expenseSystemPrompt = `You are a laundromat expense auditor. Judge whether one reported expense line is reasonable for a laundromat of the given size and revenue, using the industry benchmarks when available. Respond with a valid JSON object only:
{"isReasonable": <true|false>, "confidence": <0-100>, "notes": "<1-2 sentences explaining the verdict>"}`

const expenseUserPrompt = `Deal context:
%s
%s
Expense under review: %s at $%.0f per year.

Is this amount reasonable for this operation?`

// expenseVerdict is the wire shape of a single validation response.
type expenseVerdict struct {
	IsReasonable bool   `json:"isReasonable"`
	Confidence   int    `json:"confidence"`
	Notes        string `json:"notes"`
}

// validateExpenses fans out one model call per expense line with bounded
// concurrency. The result slice always has exactly one entry per input
// line, in input order; a failed or unparseable call yields a
// reasonable-but-zero-confidence verdict for that line instead of a gap.
func (p *Pipeline) validateExpenses(ctx context.Context, snap model.DealSnapshot, standards *model.StandardsContext) []model.ExpenseValidation {
	if len(snap.Expenses) == 0 {
		return []model.ExpenseValidation{}
	}

	dealCtx := renderSnapshot(snap)
	benchCtx := renderStandards(standards)

	results := make([]model.ExpenseValidation, len(snap.Expenses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Pipeline.ExpenseConcurrency)

	for i, line := range snap.Expenses {
		g.Go(func() error {
			results[i] = p.validateExpense(gctx, snap.DealID, dealCtx, benchCtx, line)
			return nil
		})
	}
	// Workers never return errors; Wait only orders the index writes.
	_ = g.Wait()

	return results
}

func (p *Pipeline) validateExpense(ctx context.Context, dealID, dealCtx, benchCtx string, line model.ExpenseLine) model.ExpenseValidation {
	out := model.ExpenseValidation{
		ExpenseName:  line.Name,
		AmountAnnual: line.AmountAnnual,
	}

	prompt := fmt.Sprintf(expenseUserPrompt, dealCtx, benchCtx, line.Name, line.AmountAnnual)
	text, err := p.callModel(ctx, "expense_validation", expenseSystemPrompt, prompt, 0.2)
	if err != nil {
		zap.L().Warn("expenses: validation failed, using fallback",
			zap.String("deal_id", dealID),
			zap.String("expense", line.Name),
			zap.Error(err))
		return expenseFallback(out)
	}

	verdict, ok := decodeStage[expenseVerdict](text)
	if !ok {
		zap.L().Warn("expenses: unparseable verdict, using fallback",
			zap.String("deal_id", dealID),
			zap.String("expense", line.Name))
		return expenseFallback(out)
	}

	out.IsReasonable = verdict.IsReasonable
	out.Confidence = clampScore(verdict.Confidence)
	out.Notes = verdict.Notes
	return out
}

// expenseFallback marks a line as not actionable: nominally reasonable so
// downstream consumers don't flag it, but with zero confidence so the
// verdict is distinguishable from a real one.
func expenseFallback(v model.ExpenseValidation) model.ExpenseValidation {
	v.IsReasonable = true
	v.Confidence = model.FallbackExpenseConfidence
	v.Notes = "validation unavailable"
	return v
}
