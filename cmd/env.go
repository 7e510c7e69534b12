package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/deal-analyzer/internal/pipeline"
	"github.com/sells-group/deal-analyzer/internal/store"
	anthropicpkg "github.com/sells-group/deal-analyzer/pkg/anthropic"
	"github.com/sells-group/deal-analyzer/pkg/standards"
)

// analyzerEnv holds the initialized store, clients, and pipeline needed by
// the serve/analyze commands.
type analyzerEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *analyzerEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "deals.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initStandards builds the benchmark lookup client. Returns nil (no client)
// when lookup is disabled or unconfigured; the pipeline tolerates that.
func initStandards() (standards.Client, error) {
	if cfg.Standards.Disabled {
		zap.L().Info("standards lookup disabled")
		return nil, nil
	}
	if cfg.Standards.File != "" {
		return standards.NewFileClient(cfg.Standards.File)
	}
	if cfg.Standards.Key == "" {
		zap.L().Warn("DEAL_STANDARDS_KEY not set, running without industry benchmarks")
		return nil, nil
	}

	opts := []standards.Option{standards.WithRateLimit(cfg.Standards.RateRPS)}
	if cfg.Standards.BaseURL != "" {
		opts = append(opts, standards.WithBaseURL(cfg.Standards.BaseURL))
	}
	return standards.NewClient(cfg.Standards.Key, opts...), nil
}

// initEnv sets up the store, API clients, and the pipeline. Callers should
// defer env.Close().
func initEnv(ctx context.Context) (*analyzerEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	standardsClient, err := initStandards()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	return &analyzerEnv{
		Store:    st,
		Pipeline: pipeline.New(cfg, st, anthropicClient, standardsClient),
	}, nil
}
