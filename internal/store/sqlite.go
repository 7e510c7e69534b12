package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/deal-analyzer/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Intended for local
// development and tests; production deployments use postgres.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now')),
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
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS expense_validations (
	id            TEXT PRIMARY KEY,
	deal_id       TEXT NOT NULL,
	user_id       TEXT NOT NULL,
	position      INTEGER NOT NULL,
	expense_name  TEXT NOT NULL,
	amount_annual REAL NOT NULL,
	is_reasonable INTEGER NOT NULL,
	confidence    INTEGER NOT NULL,
	notes         TEXT,
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (deal_id, user_id, position)
);

CREATE TABLE IF NOT EXISTS revenue_projections (
	id               TEXT PRIMARY KEY,
	deal_id          TEXT NOT NULL,
	user_id          TEXT NOT NULL,
	score            INTEGER NOT NULL,
	projected_annual REAL,
	opportunities    TEXT,
	insights         TEXT,
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (deal_id, user_id)
);

CREATE TABLE IF NOT EXISTS risk_assessments (
	id           TEXT PRIMARY KEY,
	deal_id      TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	score        INTEGER NOT NULL,
	risk_factors TEXT,
	insights     TEXT,
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now')),
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
	estimated_benefit REAL,
	timeframe         TEXT,
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (deal_id, user_id, position)
);

CREATE TABLE IF NOT EXISTS failed_writes (
	id         TEXT PRIMARY KEY,
	task       TEXT NOT NULL,
	deal_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	payload    TEXT,
	error      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_deal_analyses_deal ON deal_analyses(deal_id, user_id);
CREATE INDEX IF NOT EXISTS idx_expense_validations_deal ON expense_validations(deal_id, user_id);
CREATE INDEX IF NOT EXISTS idx_recommendations_deal ON recommendations(deal_id, user_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDealAnalysis(ctx context.Context, rec model.DealAnalysisRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deal_analyses (id, deal_id, user_id, market_score, financial_score, risk_score, revenue_score, overall_score, insights, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (deal_id, user_id) DO UPDATE SET
			market_score = excluded.market_score,
			financial_score = excluded.financial_score,
			risk_score = excluded.risk_score,
			revenue_score = excluded.revenue_score,
			overall_score = excluded.overall_score,
			insights = excluded.insights,
			updated_at = excluded.updated_at`,
		uuid.New().String(), rec.DealID, rec.UserID,
		rec.MarketScore, rec.FinancialScore, rec.RiskScore, rec.RevenueScore,
		rec.OverallScore, rec.Insights, time.Now().UTC(), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert deal analysis %s", rec.DealID)
}

func (s *SQLiteStore) SaveMarketData(ctx context.Context, rec model.MarketDataRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO market_data (id, location_key, deal_id, user_id, demographic_score, competition_score, opportunity_score, insights, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (location_key) DO UPDATE SET
			deal_id = excluded.deal_id,
			user_id = excluded.user_id,
			demographic_score = excluded.demographic_score,
			competition_score = excluded.competition_score,
			opportunity_score = excluded.opportunity_score,
			insights = excluded.insights,
			updated_at = excluded.updated_at`,
		uuid.New().String(), rec.LocationKey, rec.DealID, rec.UserID,
		rec.DemographicScore, rec.CompetitionScore, rec.OpportunityScore,
		rec.Insights, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert market data %s", rec.LocationKey)
}

func (s *SQLiteStore) SaveExpenseValidation(ctx context.Context, rec model.ExpenseValidationRecord) error {
	v := rec.Validation
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expense_validations (id, deal_id, user_id, position, expense_name, amount_annual, is_reasonable, confidence, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (deal_id, user_id, position) DO UPDATE SET
			expense_name = excluded.expense_name,
			amount_annual = excluded.amount_annual,
			is_reasonable = excluded.is_reasonable,
			confidence = excluded.confidence,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		uuid.New().String(), rec.DealID, rec.UserID, rec.Position,
		v.ExpenseName, v.AmountAnnual, v.IsReasonable, v.Confidence, v.Notes,
		time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert expense validation %s[%d]", rec.DealID, rec.Position)
}

func (s *SQLiteStore) SaveRevenueProjection(ctx context.Context, rec model.RevenueProjectionRecord) error {
	opportunities, err := json.Marshal(rec.Opportunities)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal opportunities")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO revenue_projections (id, deal_id, user_id, score, projected_annual, opportunities, insights, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (deal_id, user_id) DO UPDATE SET
			score = excluded.score,
			projected_annual = excluded.projected_annual,
			opportunities = excluded.opportunities,
			insights = excluded.insights,
			updated_at = excluded.updated_at`,
		uuid.New().String(), rec.DealID, rec.UserID, rec.Score,
		rec.ProjectedAnnual, string(opportunities), rec.Insights, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert revenue projection %s", rec.DealID)
}

func (s *SQLiteStore) SaveRiskAssessment(ctx context.Context, rec model.RiskAssessmentRecord) error {
	factors, err := json.Marshal(rec.RiskFactors)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal risk factors")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO risk_assessments (id, deal_id, user_id, score, risk_factors, insights, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (deal_id, user_id) DO UPDATE SET
			score = excluded.score,
			risk_factors = excluded.risk_factors,
			insights = excluded.insights,
			updated_at = excluded.updated_at`,
		uuid.New().String(), rec.DealID, rec.UserID, rec.Score,
		string(factors), rec.Insights, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert risk assessment %s", rec.DealID)
}

func (s *SQLiteStore) SaveRecommendation(ctx context.Context, rec model.RecommendationRecord) error {
	r := rec.Recommendation
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations (id, deal_id, user_id, position, category, priority, title, description, impact_score, difficulty, estimated_benefit, timeframe, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (deal_id, user_id, position) DO UPDATE SET
			category = excluded.category,
			priority = excluded.priority,
			title = excluded.title,
			description = excluded.description,
			impact_score = excluded.impact_score,
			difficulty = excluded.difficulty,
			estimated_benefit = excluded.estimated_benefit,
			timeframe = excluded.timeframe,
			updated_at = excluded.updated_at`,
		uuid.New().String(), rec.DealID, rec.UserID, rec.Position,
		r.Category, r.Priority, r.Title, r.Description,
		r.ImpactScore, r.Difficulty, r.EstimatedBenefit, r.Timeframe,
		time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert recommendation %s[%d]", rec.DealID, rec.Position)
}

func (s *SQLiteStore) RecordFailedWrite(ctx context.Context, entry FailedWrite) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO failed_writes (id, task, deal_id, user_id, payload, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), entry.Task, entry.DealID, entry.UserID,
		string(entry.Payload), entry.Error, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: record failed write %s", entry.Task)
}

var _ Store = (*SQLiteStore)(nil)
