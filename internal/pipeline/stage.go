package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/deal-analyzer/internal/resilience"
	"github.com/sells-group/deal-analyzer/pkg/anthropic"
)

// runUsage accumulates token usage across the concurrent model calls of a
// single run.
type runUsage struct {
	mu    sync.Mutex
	total anthropic.TokenUsage
}

func (u *runUsage) add(other anthropic.TokenUsage) {
	u.mu.Lock()
	u.total.Add(other)
	u.mu.Unlock()
}

func (u *runUsage) snapshot() anthropic.TokenUsage {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.total
}

// callModel issues one LLM call for a named stage: per-stage timeout, retry
// on transient failure, cost attribution. Returns the concatenated text of
// the response.
func (p *Pipeline) callModel(ctx context.Context, stage, system, prompt string, temperature float64) (string, error) {
	timeout := time.Duration(p.cfg.Pipeline.StageTimeoutSecs) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.MaxAttempts = p.cfg.Anthropic.MaxAttempts
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", stage)

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return p.anthropic.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       p.cfg.Anthropic.Model,
			MaxTokens:   p.cfg.Anthropic.MaxTokens,
			System:      anthropic.BuildCachedSystemBlocks(system),
			Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
			Temperature: &temperature,
		})
	})
	if err != nil {
		return "", eris.Wrapf(err, "%s: model call", stage)
	}

	resp.Usage.LogCost(p.cfg.Anthropic.Model, stage)
	if p.usage != nil {
		p.usage.add(resp.Usage)
	}
	return extractText(resp), nil
}
