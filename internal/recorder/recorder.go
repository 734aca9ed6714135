package recorder

import (
	"time"

	"TrendScope/internal/model"
)

// ScoreRecord is one persisted analysis outcome.
type ScoreRecord struct {
	RunID            string
	Symbol           string
	AnalyzedAt       time.Time
	Score            float64
	RawScore         float64
	Rating           model.Rating
	RSquared         float64
	TrendType        model.TrendType
	AnnualReturn     float64
	AnnualVolatility float64
	BenchmarkSource  model.BenchmarkSource
}

// NewScoreRecord flattens an analysis result for storage.
func NewScoreRecord(runID string, res *model.AnalysisResult) ScoreRecord {
	c := res.TotalScore.Components
	return ScoreRecord{
		RunID:            runID,
		Symbol:           res.Symbol,
		AnalyzedAt:       res.AnalyzedAt,
		Score:            res.TotalScore.Score,
		RawScore:         res.TotalScore.RawScore,
		Rating:           res.TotalScore.Rating,
		RSquared:         res.RSquared,
		TrendType:        c.Trend.Details.Type,
		AnnualReturn:     c.Return.Value,
		AnnualVolatility: c.Volatility.Value,
		BenchmarkSource:  res.Benchmark.Source,
	}
}

// Recorder persists analysis history.
type Recorder interface {
	RecordAnalysis(runID string, res *model.AnalysisResult) error
	RecordCrossovers(runID, symbol string, events []model.CrossoverEvent) error
	RecentScores(symbol string, limit int) ([]ScoreRecord, error)
	Close() error
}
