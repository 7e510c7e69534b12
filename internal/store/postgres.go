package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/deal-analyzer/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// preparedStatements lists queries to prepare on each new connection. The
// background fan-out issues these on every analyzed deal.
var preparedStatements = map[string]string{
	"upsert_deal_analysis":      upsertDealAnalysisSQL,
	"upsert_market_data":        upsertMarketDataSQL,
	"upsert_expense_validation": upsertExpenseValidationSQL,
	"upsert_revenue_projection": upsertRevenueProjectionSQL,
	"upsert_risk_assessment":    upsertRiskAssessmentSQL,
	"upsert_recommendation":     upsertRecommendationSQL,
}

const upsertDealAnalysisSQL = `INSERT INTO deal_analyses (id, deal_id, user_id, market_score, financial_score, risk_score, revenue_score, overall_score, insights, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
ON CONFLICT (deal_id, user_id) DO UPDATE SET
	market_score = EXCLUDED.market_score,
	financial_score = EXCLUDED.financial_score,
	risk_score = EXCLUDED.risk_score,
	revenue_score = EXCLUDED.revenue_score,
	overall_score = EXCLUDED.overall_score,
	insights = EXCLUDED.insights,
	updated_at = EXCLUDED.updated_at`

const upsertMarketDataSQL = `INSERT INTO market_data (id, location_key, deal_id, user_id, demographic_score, competition_score, opportunity_score, insights, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (location_key) DO UPDATE SET
	deal_id = EXCLUDED.deal_id,
	user_id = EXCLUDED.user_id,
	demographic_score = EXCLUDED.demographic_score,
	competition_score = EXCLUDED.competition_score,
	opportunity_score = EXCLUDED.opportunity_score,
	insights = EXCLUDED.insights,
	updated_at = EXCLUDED.updated_at`

const upsertExpenseValidationSQL = `INSERT INTO expense_validations (id, deal_id, user_id, position, expense_name, amount_annual, is_reasonable, confidence, notes, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (deal_id, user_id, position) DO UPDATE SET
	expense_name = EXCLUDED.expense_name,
	amount_annual = EXCLUDED.amount_annual,
	is_reasonable = EXCLUDED.is_reasonable,
	confidence = EXCLUDED.confidence,
	notes = EXCLUDED.notes,
	updated_at = EXCLUDED.updated_at`

const upsertRevenueProjectionSQL = `INSERT INTO revenue_projections (id, deal_id, user_id, score, projected_annual, opportunities, insights, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (deal_id, user_id) DO UPDATE SET
	score = EXCLUDED.score,
	projected_annual = EXCLUDED.projected_annual,
	opportunities = EXCLUDED.opportunities,
	insights = EXCLUDED.insights,
	updated_at = EXCLUDED.updated_at`

const upsertRiskAssessmentSQL = `INSERT INTO risk_assessments (id, deal_id, user_id, score, risk_factors, insights, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (deal_id, user_id) DO UPDATE SET
	score = EXCLUDED.score,
	risk_factors = EXCLUDED.risk_factors,
	insights = EXCLUDED.insights,
	updated_at = EXCLUDED.updated_at`

const upsertRecommendationSQL = `INSERT INTO recommendations (id, deal_id, user_id, position, category, priority, title, description, impact_score, difficulty, estimated_benefit, timeframe, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (deal_id, user_id, position) DO UPDATE SET
	category = EXCLUDED.category,
	priority = EXCLUDED.priority,
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	impact_score = EXCLUDED.impact_score,
	difficulty = EXCLUDED.difficulty,
	estimated_benefit = EXCLUDED.estimated_benefit,
	timeframe = EXCLUDED.timeframe,
	updated_at = EXCLUDED.updated_at`

const insertFailedWriteSQL = `INSERT INTO failed_writes (id, task, deal_id, user_id, payload, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare the upsert statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS deal_analyses (
	id              TEXT PRIMARY KEY,
	deal_id         TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	market_score    INTEGER NOT NULL,
	financial_score INTEGER NOT NULL,
	risk_score      INTEGER NOT NULL,
	revenue_score   INTEGER NOT NULL,
	overall_score   INTEGER NOT NULL,
	insights        TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (deal_id, user_id)
);

CREATE TABLE IF NOT EXISTS market_data (
	id                TEXT PRIMARY KEY,
	location_key      TEXT NOT NULL UNIQUE,
	deal_id           TEXT NOT NULL,
	user_id           TEXT NOT NULL,
	demographic_score INTEGER NOT NULL,
	competition_score INTEGER NOT NULL,
	opportunity_score INTEGER NOT NULL,
	insights          TEXT,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS expense_validations (
	id            TEXT PRIMARY KEY,
	deal_id       TEXT NOT NULL,
	user_id       TEXT NOT NULL,
	position      INTEGER NOT NULL,
	expense_name  TEXT NOT NULL,
	amount_annual DOUBLE PRECISION NOT NULL,
	is_reasonable BOOLEAN NOT NULL,
	confidence    INTEGER NOT NULL,
	notes         TEXT,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (deal_id, user_id, position)
);

CREATE TABLE IF NOT EXISTS revenue_projections (
	id               TEXT PRIMARY KEY,
	deal_id          TEXT NOT NULL,
	user_id          TEXT NOT NULL,
	score            INTEGER NOT NULL,
	projected_annual DOUBLE PRECISION,
	opportunities    JSONB,
	insights         TEXT,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (deal_id, user_id)
);

CREATE TABLE IF NOT EXISTS risk_assessments (
	id           TEXT PRIMARY KEY,
	deal_id      TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	score        INTEGER NOT NULL,
	risk_factors JSONB,
	insights     TEXT,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (deal_id, user_id)
);

CREATE TABLE IF NOT EXISTS recommendations (
	id                TEXT PRIMARY KEY,
	deal_id           TEXT NOT NULL,
	user_id           TEXT NOT NULL,
	position          INTEGER NOT NULL,
	category          TEXT NOT NULL,
	priority          INTEGER NOT NULL,
	title             TEXT NOT NULL,
	description       TEXT NOT NULL,
	impact_score      INTEGER NOT NULL,
	difficulty        INTEGER NOT NULL,
	estimated_benefit DOUBLE PRECISION,
	timeframe         TEXT,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (deal_id, user_id, position)
);

CREATE TABLE IF NOT EXISTS failed_writes (
	id         TEXT PRIMARY KEY,
	task       TEXT NOT NULL,
	deal_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	payload    JSONB,
	error      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_deal_analyses_deal ON deal_analyses(deal_id, user_id);
CREATE INDEX IF NOT EXISTS idx_expense_validations_deal ON expense_validations(deal_id, user_id);
CREATE INDEX IF NOT EXISTS idx_recommendations_deal ON recommendations(deal_id, user_id);
CREATE INDEX IF NOT EXISTS idx_failed_writes_task ON failed_writes(task);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveDealAnalysis(ctx context.Context, rec model.DealAnalysisRecord) error {
	_, err := s.pool.Exec(ctx, upsertDealAnalysisSQL,
		uuid.New().String(), rec.DealID, rec.UserID,
		rec.MarketScore, rec.FinancialScore, rec.RiskScore, rec.RevenueScore,
		rec.OverallScore, rec.Insights, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert deal analysis %s", rec.DealID)
}

func (s *PostgresStore) SaveMarketData(ctx context.Context, rec model.MarketDataRecord) error {
	_, err := s.pool.Exec(ctx, upsertMarketDataSQL,
		uuid.New().String(), rec.LocationKey, rec.DealID, rec.UserID,
		rec.DemographicScore, rec.CompetitionScore, rec.OpportunityScore,
		rec.Insights, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert market data %s", rec.LocationKey)
}

func (s *PostgresStore) SaveExpenseValidation(ctx context.Context, rec model.ExpenseValidationRecord) error {
	v := rec.Validation
	_, err := s.pool.Exec(ctx, upsertExpenseValidationSQL,
		uuid.New().String(), rec.DealID, rec.UserID, rec.Position,
		v.ExpenseName, v.AmountAnnual, v.IsReasonable, v.Confidence, v.Notes,
		time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert expense validation %s[%d]", rec.DealID, rec.Position)
}

func (s *PostgresStore) SaveRevenueProjection(ctx context.Context, rec model.RevenueProjectionRecord) error {
	opportunities, err := json.Marshal(rec.Opportunities)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal opportunities")
	}
	_, err = s.pool.Exec(ctx, upsertRevenueProjectionSQL,
		uuid.New().String(), rec.DealID, rec.UserID, rec.Score,
		rec.ProjectedAnnual, opportunities, rec.Insights, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert revenue projection %s", rec.DealID)
}

func (s *PostgresStore) SaveRiskAssessment(ctx context.Context, rec model.RiskAssessmentRecord) error {
	factors, err := json.Marshal(rec.RiskFactors)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal risk factors")
	}
	_, err = s.pool.Exec(ctx, upsertRiskAssessmentSQL,
		uuid.New().String(), rec.DealID, rec.UserID, rec.Score,
		factors, rec.Insights, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert risk assessment %s", rec.DealID)
}

func (s *PostgresStore) SaveRecommendation(ctx context.Context, rec model.RecommendationRecord) error {
	r := rec.Recommendation
	_, err := s.pool.Exec(ctx, upsertRecommendationSQL,
		uuid.New().String(), rec.DealID, rec.UserID, rec.Position,
		r.Category, r.Priority, r.Title, r.Description,
		r.ImpactScore, r.Difficulty, r.EstimatedBenefit, r.Timeframe,
		time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert recommendation %s[%d]", rec.DealID, rec.Position)
}

func (s *PostgresStore) RecordFailedWrite(ctx context.Context, entry FailedWrite) error {
	_, err := s.pool.Exec(ctx, insertFailedWriteSQL,
		uuid.New().String(), entry.Task, entry.DealID, entry.UserID,
		entry.Payload, entry.Error, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: record failed write %s", entry.Task)
}

var _ Store = (*PostgresStore)(nil)
