package model

import "time"

// AnalysisResult is the output of the composite analysis call.
type AnalysisResult struct {
	Symbol     string              `json:"symbol"`
	AnalyzedAt time.Time           `json:"analyzed_at"`
	Benchmark  BenchmarkParameters `json:"benchmark"`
	RegressionResult
	TotalScore CompositeScore `json:"total_score"`
}

// WindowRow holds the positional metrics for one date of a rolling analysis.
type WindowRow struct {
	Date                time.Time `json:"date"`
	Close               float64   `json:"close"`
	High                float64   `json:"high"`
	Low                 float64   `json:"low"`
	RetracementRatioPct float64   `json:"retracement_ratio_pct"`
	PricePositionPct    float64   `json:"price_position_pct"`
	R2Pct               *float64  `json:"r2_pct"` // nil when the lookback window is too short
	Open                float64   `json:"open"`
	Volume              float64   `json:"volume"`
	Dividends           float64   `json:"dividends"`
	Splits              float64   `json:"splits"`
	Observations        int       `json:"observations"`
	WindowStart         time.Time `json:"window_start"`
}

// R2Point is one sample of a rolling R² series.
type R2Point struct {
	Date  time.Time `json:"date"`
	R2Pct float64   `json:"r2_pct"`
}

// CrossoverDirection labels a sign change between two series.
type CrossoverDirection string

const (
	CrossDown CrossoverDirection = "down"
	CrossUp   CrossoverDirection = "up"
)

// CrossoverEvent marks where two series cross.
type CrossoverEvent struct {
	Date      time.Time          `json:"date"`
	Value     float64            `json:"value"`
	Direction CrossoverDirection `json:"direction"`
	Price     float64            `json:"price"`
}
