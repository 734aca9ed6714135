package model

import (
	"encoding/json"
	"math"
)

// Rating is the qualitative band of a composite score.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingVeryGood  Rating = "Very Good"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
	RatingError     Rating = "Error"
)

// TrendType classifies a fit by the signs of its quadratic and linear terms.
type TrendType string

const (
	TrendAcceleratingUp   TrendType = "accelerating_up"
	TrendAcceleratingDown TrendType = "accelerating_down"
	TrendReversalUp       TrendType = "reversal_up"
	TrendReversalDown     TrendType = "reversal_down"
	TrendFlat             TrendType = "flat"
	TrendUnknown          TrendType = "unknown"
)

// BenchmarkSource tells whether benchmark parameters were measured or assumed.
type BenchmarkSource string

const (
	BenchmarkLive     BenchmarkSource = "live"
	BenchmarkFallback BenchmarkSource = "fallback"
)

// BenchmarkParameters describes the reference market the asset is scored against.
type BenchmarkParameters struct {
	QuadCoef         float64         `json:"quad_coef" yaml:"quad_coef"`
	LinearCoef       float64         `json:"linear_coef" yaml:"linear_coef"`
	RSquared         float64         `json:"r_squared" yaml:"r_squared"`
	AnnualReturn     float64         `json:"annual_return" yaml:"annual_return"`
	AnnualVolatility float64         `json:"annual_volatility" yaml:"annual_volatility"`
	Source           BenchmarkSource `json:"source,omitempty" yaml:"-"`
}

// TrendDetails carries the diagnostics behind a trend score.
type TrendDetails struct {
	Ratio            float64   `json:"ratio"`
	CredibilityLevel int       `json:"credibility_level"`
	QuadCoef         float64   `json:"quad_coef"`
	LinearCoef       float64   `json:"linear_coef"`
	Type             TrendType `json:"type"`
}

// MarshalJSON writes an unbounded ratio (zero linear term) as null.
func (d TrendDetails) MarshalJSON() ([]byte, error) {
	type plain TrendDetails
	out := struct {
		plain
		Ratio *float64 `json:"ratio"`
	}{plain: plain(d)}
	if !math.IsInf(d.Ratio, 0) && !math.IsNaN(d.Ratio) {
		out.Ratio = &d.Ratio
	}
	return json.Marshal(out)
}

// TrendComponent is the trend sub-score.
type TrendComponent struct {
	Score   float64      `json:"score"`
	Details TrendDetails `json:"details"`
}

// MetricComponent is a return or volatility sub-score with the measured value.
type MetricComponent struct {
	Score float64 `json:"score"`
	Value float64 `json:"value"`
}

// Components groups the three sub-scores.
type Components struct {
	Trend      TrendComponent  `json:"trend"`
	Return     MetricComponent `json:"return"`
	Volatility MetricComponent `json:"volatility"`
}

// Scaling records how the raw score was rescaled against the benchmark.
type Scaling struct {
	Factor        float64 `json:"factor"`
	BenchmarkBase float64 `json:"sp500_base"`
}

// Weights are the blend weights of the composite score.
type Weights struct {
	Trend      float64 `json:"trend" yaml:"trend" validate:"gte=0,lte=1"`
	Return     float64 `json:"return" yaml:"return" validate:"gte=0,lte=1"`
	Volatility float64 `json:"volatility" yaml:"volatility" validate:"gte=0,lte=1"`
}

// CompositeScore is the terminal scoring output.
type CompositeScore struct {
	Score      float64    `json:"score"`
	RawScore   float64    `json:"raw_score"`
	Rating     Rating     `json:"rating"`
	Components Components `json:"components"`
	Scaling    Scaling    `json:"scaling"`
	Weights    Weights    `json:"weights"`
}
