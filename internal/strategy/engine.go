package strategy

import (
	"fmt"
	"math"
	"math/rand/v2"

	"TrendScope/internal/model"
)

// DefaultWeights blend trend, return and volatility into the raw score.
var DefaultWeights = model.Weights{Trend: 0.30, Return: 0.60, Volatility: 0.10}

const (
	// BenchmarkTarget is the scaled score the benchmark itself would receive.
	BenchmarkTarget = 75.0
	scoreCeiling    = 95.0
	// DefaultJitterSpread is the half-width of the default score perturbation.
	DefaultJitterSpread = 2.0
)

// RatingBands maps a final score to its rating, highest band first.
var RatingBands = []struct {
	MinScore float64
	Rating   model.Rating
}{
	{90, model.RatingExcellent},
	{75, model.RatingVeryGood},
	{65, model.RatingGood},
	{40, model.RatingFair},
}

// MapRating maps a final score to a rating band.
func MapRating(score float64) model.Rating {
	for _, b := range RatingBands {
		if score >= b.MinScore {
			return b.Rating
		}
	}
	return model.RatingPoor
}

// Jitter returns the perturbation added to a final score.
type Jitter func() float64

// NoJitter keeps scores deterministic.
func NoJitter() float64 { return 0 }

// UniformJitter draws uniformly from [-spread, +spread].
func UniformJitter(spread float64) Jitter {
	return func() float64 {
		return (rand.Float64()*2 - 1) * spread
	}
}

// AssetMetrics are the measured inputs for one asset.
type AssetMetrics struct {
	QuadCoef         float64
	LinearCoef       float64
	RSquared         float64
	AnnualReturn     float64
	AnnualVolatility float64
	PeriodDays       int
}

func (m AssetMetrics) profile() AssetProfile {
	return AssetProfile{AnnualVolatility: m.AnnualVolatility, PeriodDays: m.PeriodDays}
}

// Engine combines sub-scores into a composite score rescaled against the benchmark.
// It holds configuration only and is safe for concurrent use.
type Engine struct {
	weights model.Weights
	jitter  Jitter
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights overrides DefaultWeights.
func WithWeights(w model.Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithJitter replaces the score perturbation; pass NoJitter for reproducible output.
func WithJitter(j Jitter) Option {
	return func(e *Engine) {
		if j != nil {
			e.jitter = j
		}
	}
}

// NewEngine returns an Engine with default weights and uniform ±2 jitter.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights: DefaultWeights,
		jitter:  UniformJitter(DefaultJitterSpread),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the blend weights in use.
func (e *Engine) Weights() model.Weights { return e.weights }

func (e *Engine) blend(trend, ret, vol float64) float64 {
	return trend*e.weights.Trend + ret*e.weights.Return + vol*e.weights.Volatility
}

// Score computes the composite score of an asset against benchmark parameters.
// Trend failures fall back to a neutral trend; any other failure yields
// ErrorScore together with an error wrapping model.ErrScoringFailure.
func (e *Engine) Score(asset AssetMetrics, bench model.BenchmarkParameters) (model.CompositeScore, error) {
	if !finite(asset.AnnualReturn) || !finite(asset.AnnualVolatility) {
		return e.ErrorScore(), fmt.Errorf("%w: non-finite asset return or volatility", model.ErrScoringFailure)
	}

	profile := asset.profile()
	// A failed trend keeps its neutral fallback.
	trend, _ := ScoreTrend(asset.QuadCoef, asset.LinearCoef, asset.RSquared, profile)
	returnScore := ScoreReturn(asset.AnnualReturn, bench.AnnualReturn)
	volScore, err := ScoreVolatility(asset.AnnualVolatility, bench.AnnualVolatility)
	if err != nil {
		return e.ErrorScore(), err
	}
	raw := e.blend(trend.Score, returnScore, volScore)

	benchTrend, _ := ScoreTrend(bench.QuadCoef, bench.LinearCoef, bench.RSquared, profile)
	benchVol, err := ScoreVolatility(bench.AnnualVolatility, bench.AnnualVolatility)
	if err != nil {
		return e.ErrorScore(), err
	}
	benchRaw := e.blend(benchTrend.Score, ScoreReturn(bench.AnnualReturn, bench.AnnualReturn), benchVol)
	if benchRaw <= 0 || !finite(benchRaw) {
		return e.ErrorScore(), fmt.Errorf("%w: benchmark raw score %v", model.ErrScoringFailure, benchRaw)
	}

	factor := BenchmarkTarget / benchRaw
	final := math.Min(scoreCeiling, raw*factor) + e.jitter()
	final = math.Round(final*100) / 100
	final = math.Max(0, math.Min(100, final))
	if !finite(final) {
		return e.ErrorScore(), fmt.Errorf("%w: non-finite final score", model.ErrScoringFailure)
	}

	return model.CompositeScore{
		Score:    final,
		RawScore: raw,
		Rating:   MapRating(final),
		Components: model.Components{
			Trend:      trend,
			Return:     model.MetricComponent{Score: returnScore, Value: asset.AnnualReturn},
			Volatility: model.MetricComponent{Score: volScore, Value: asset.AnnualVolatility},
		},
		Scaling: model.Scaling{Factor: factor, BenchmarkBase: benchRaw},
		Weights: e.weights,
	}, nil
}

// ErrorScore is the all-zero result with rating Error.
func (e *Engine) ErrorScore() model.CompositeScore {
	return model.CompositeScore{
		Rating: model.RatingError,
		Components: model.Components{
			Trend: model.TrendComponent{Details: model.TrendDetails{Type: model.TrendUnknown}},
		},
		Weights: e.weights,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
