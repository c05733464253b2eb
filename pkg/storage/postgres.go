package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/econ_radar/pkg/config"
	"github.com/iWorld-y/econ_radar/pkg/model"
)

type Storage struct {
	db *sql.DB
}

func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id SERIAL PRIMARY KEY,
			question TEXT NOT NULL,
			kind TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS single_region_reports (
			id SERIAL PRIMARY KEY,
			run_id INTEGER REFERENCES analysis_runs(id),
			region TEXT NOT NULL,
			indicator TEXT NOT NULL,
			year_current INTEGER,
			year_previous INTEGER,
			value_current DOUBLE PRECISION,
			value_previous DOUBLE PRECISION,
			unit TEXT,
			source TEXT,
			growth_rate_percent TEXT,
			growth_trend TEXT,
			conclusion TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS weakness_findings (
			id SERIAL PRIMARY KEY,
			report_id INTEGER REFERENCES single_region_reports(id),
			weakness TEXT,
			severity TEXT,
			suggestion TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS multi_region_reports (
			id SERIAL PRIMARY KEY,
			run_id INTEGER REFERENCES analysis_runs(id),
			indicator TEXT NOT NULL,
			year INTEGER,
			data_summary TEXT,
			comparison_analysis TEXT,
			conclusion TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS ranking_entries (
			id SERIAL PRIMARY KEY,
			report_id INTEGER REFERENCES multi_region_reports(id),
			rank INTEGER,
			region TEXT,
			value DOUBLE PRECISION
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult 记录一次分析：先写 run，再按报告类型写明细
func (s *Storage) SaveResult(question string, res *model.AnalysisResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	var runID int
	err = tx.QueryRow(
		`INSERT INTO analysis_runs (question, kind) VALUES ($1, $2) RETURNING id`,
		question, res.Kind,
	).Scan(&runID)
	if err != nil {
		return rollback(tx, err)
	}

	switch res.Kind {
	case model.KindSingleRegion:
		err = saveSingleReport(tx, runID, res.Single)
	case model.KindMultiRegion:
		err = saveMultiReport(tx, runID, res.Multi)
	default:
		err = fmt.Errorf("unknown result kind: %s", res.Kind)
	}
	if err != nil {
		return rollback(tx, err)
	}

	return tx.Commit()
}

func saveSingleReport(tx *sql.Tx, runID int, r *model.EconomicReport) error {
	var reportID int
	err := tx.QueryRow(
		`INSERT INTO single_region_reports
			(run_id, region, indicator, year_current, year_previous,
			 value_current, value_previous, unit, source,
			 growth_rate_percent, growth_trend, conclusion)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		runID, r.Region, r.Indicator, r.YearCurrent, r.YearPrevious,
		r.ValueCurrent, r.ValuePrevious, r.Unit, r.Source,
		r.GrowthRatePercent, r.GrowthTrend, r.Conclusion,
	).Scan(&reportID)
	if err != nil {
		return err
	}

	for _, w := range r.WeaknessAnalysis {
		if _, err := tx.Exec(
			`INSERT INTO weakness_findings (report_id, weakness, severity, suggestion)
			 VALUES ($1, $2, $3, $4)`,
			reportID, w.Weakness, w.Severity, w.Suggestion,
		); err != nil {
			return err
		}
	}
	return nil
}

func saveMultiReport(tx *sql.Tx, runID int, r *model.MultiRegionReport) error {
	var reportID int
	err := tx.QueryRow(
		`INSERT INTO multi_region_reports
			(run_id, indicator, year, data_summary, comparison_analysis, conclusion)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		runID, r.Indicator, r.Year, r.DataSummary, r.ComparisonAnalysis, r.Conclusion,
	).Scan(&reportID)
	if err != nil {
		return err
	}

	for _, entry := range r.Ranking {
		if _, err := tx.Exec(
			`INSERT INTO ranking_entries (report_id, rank, region, value)
			 VALUES ($1, $2, $3, $4)`,
			reportID, entry.Rank, entry.Region, entry.Value,
		); err != nil {
			return err
		}
	}
	return nil
}

func rollback(tx *sql.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}
