package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"

	"TrendScope/internal/model"
)

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger arbor.ILogger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger arbor.ILogger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = arbor.NewLogger()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL,
			timestamp         INTEGER NOT NULL,
			symbol            TEXT NOT NULL,
			score             REAL,
			raw_score         REAL,
			rating            TEXT,
			r_squared         REAL,
			trend_type        TEXT,
			annual_return     REAL,
			annual_volatility REAL,
			benchmark_source  TEXT,
			score_json        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON analyses(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS crossovers (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL,
			symbol    TEXT NOT NULL,
			date      INTEGER NOT NULL,
			direction TEXT,
			value     REAL,
			price     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_crossovers_symbol ON crossovers(symbol, date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(runID string, res *model.AnalysisResult) error {
	rec := NewScoreRecord(runID, res)
	if rec.AnalyzedAt.IsZero() {
		rec.AnalyzedAt = time.Now()
	}
	scoreJSON, err := json.Marshal(res.TotalScore)
	if err != nil {
		return fmt.Errorf("encode score for %s: %w", rec.Symbol, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO analyses
		(run_id, timestamp, symbol, score, raw_score, rating, r_squared, trend_type,
		 annual_return, annual_volatility, benchmark_source, score_json)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, rec.AnalyzedAt.Unix(), rec.Symbol, rec.Score, rec.RawScore,
		string(rec.Rating), rec.RSquared, string(rec.TrendType),
		rec.AnnualReturn, rec.AnnualVolatility, string(rec.BenchmarkSource), string(scoreJSON),
	)
	if err != nil {
		return fmt.Errorf("insert analysis for %s: %w", rec.Symbol, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordCrossovers(runID, symbol string, events []model.CrossoverEvent) error {
	if len(events) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, e := range events {
		if _, err := tx.Exec(`INSERT INTO crossovers
			(run_id, symbol, date, direction, value, price) VALUES (?,?,?,?,?,?)`,
			runID, symbol, e.Date.Unix(), string(e.Direction), e.Value, e.Price,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert crossover for %s: %w", symbol, err)
		}
	}
	return tx.Commit()
}

// RecentScores returns up to limit analyses of symbol, newest first.
func (r *SQLiteRecorder) RecentScores(symbol string, limit int) ([]ScoreRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, timestamp, symbol, score, raw_score, rating, r_squared,
		trend_type, annual_return, annual_volatility, benchmark_source
		FROM analyses WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query scores for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []ScoreRecord
	for rows.Next() {
		var (
			rec                         ScoreRecord
			ts                          int64
			rating, trend, benchmarkSrc string
		)
		if err := rows.Scan(&rec.RunID, &ts, &rec.Symbol, &rec.Score, &rec.RawScore, &rating,
			&rec.RSquared, &trend, &rec.AnnualReturn, &rec.AnnualVolatility, &benchmarkSrc); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		rec.AnalyzedAt = time.Unix(ts, 0)
		rec.Rating = model.Rating(rating)
		rec.TrendType = model.TrendType(trend)
		rec.BenchmarkSource = model.BenchmarkSource(benchmarkSrc)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
