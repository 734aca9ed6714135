package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"TrendScope/internal/calculator"
	"TrendScope/internal/config"
	"TrendScope/internal/model"
	"TrendScope/internal/strategy"
)

const equationPanicked = "Error occurred"

// BenchmarkSource supplies benchmark parameters over an asset's date range.
type BenchmarkSource interface {
	Parameters(ctx context.Context, start, end time.Time) model.BenchmarkParameters
}

type fallbackBenchmark struct{ params model.BenchmarkParameters }

func (f fallbackBenchmark) Parameters(context.Context, time.Time, time.Time) model.BenchmarkParameters {
	return f.params
}

// Analyzer runs the composite analysis: benchmark, curve fit, scoring.
type Analyzer struct {
	benchmark  BenchmarkSource
	engine     *strategy.Engine
	futureDays int
	logger     arbor.ILogger
	now        func() time.Time
}

// NewAnalyzer creates an Analyzer. A nil engine uses strategy defaults and a
// nil benchmark scores against the reference market baseline.
func NewAnalyzer(benchmark BenchmarkSource, engine *strategy.Engine, futureDays int, logger arbor.ILogger) *Analyzer {
	if benchmark == nil {
		params := config.ReferenceMarket
		params.Source = model.BenchmarkFallback
		benchmark = fallbackBenchmark{params}
	}
	if engine == nil {
		engine = strategy.NewEngine()
	}
	if logger == nil {
		logger = arbor.NewLogger()
	}
	if futureDays < 0 {
		futureDays = calculator.DefaultFutureDays
	}
	return &Analyzer{
		benchmark:  benchmark,
		engine:     engine,
		futureDays: futureDays,
		logger:     logger,
		now:        time.Now,
	}
}

// Analyze never fails: empty input, fit failures, scoring failures and
// panics all come back as a well-formed result with rating Error.
func (a *Analyzer) Analyze(ctx context.Context, series *model.PriceSeries) (res model.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Str("symbol", symbolOf(series)).Str("panic", fmt.Sprint(r)).Msg("analysis aborted")
			res = a.errorResult(series, calculator.FailedRegression(closesOf(series), equationPanicked))
		}
	}()

	if series.Empty() {
		a.logger.Warn().Err(model.ErrEmptyInput).Str("symbol", symbolOf(series)).Msg("nothing to analyze")
		empty, _ := calculator.FitSeries(series, a.futureDays)
		return a.errorResult(series, empty)
	}
	if err := series.Validate(); err != nil {
		a.logger.Warn().Err(err).Str("symbol", series.Symbol).Msg("series failed validation")
	}

	first, last := series.First().Time, series.Last().Time
	bench := a.benchmark.Parameters(ctx, first, last)

	reg, err := calculator.FitSeries(series, a.futureDays)
	if err != nil {
		a.logger.Error().Err(err).Str("symbol", series.Symbol).Msg("regression failed")
		res = a.errorResult(series, reg)
		res.Benchmark = bench
		return res
	}

	res = model.AnalysisResult{
		Symbol:           series.Symbol,
		AnalyzedAt:       a.now(),
		Benchmark:        bench,
		RegressionResult: reg,
	}

	metrics, err := assetMetrics(series, reg)
	if err != nil {
		a.logger.Error().Err(err).Str("symbol", series.Symbol).Msg("scoring inputs unavailable")
		res.TotalScore = a.engine.ErrorScore()
		return res
	}

	score, err := a.engine.Score(metrics, bench)
	if err != nil {
		a.logger.Error().Err(err).Str("symbol", series.Symbol).Msg("scoring failed")
	}
	res.TotalScore = score

	a.logger.Info().
		Str("symbol", series.Symbol).
		Str("benchmark", string(bench.Source)).
		Float64("r2", reg.RSquared).
		Float64("annual_return", metrics.AnnualReturn).
		Float64("annual_volatility", metrics.AnnualVolatility).
		Float64("raw_score", score.RawScore).
		Float64("benchmark_raw", score.Scaling.BenchmarkBase).
		Float64("score", score.Score).
		Str("rating", string(score.Rating)).
		Msg("analysis complete")
	return res
}

func assetMetrics(series *model.PriceSeries, reg model.RegressionResult) (strategy.AssetMetrics, error) {
	annualReturn, err := calculator.SeriesReturn(series)
	if err != nil {
		return strategy.AssetMetrics{}, err
	}
	annualVol, err := calculator.AnnualizedVolatility(series.Closes())
	if err != nil {
		return strategy.AssetMetrics{}, err
	}
	return strategy.AssetMetrics{
		QuadCoef:         reg.Quad(),
		LinearCoef:       reg.Linear(),
		RSquared:         reg.RSquared,
		AnnualReturn:     annualReturn,
		AnnualVolatility: annualVol,
		PeriodDays:       series.Len(),
	}, nil
}

func (a *Analyzer) errorResult(series *model.PriceSeries, reg model.RegressionResult) model.AnalysisResult {
	return model.AnalysisResult{
		Symbol:           symbolOf(series),
		AnalyzedAt:       a.now(),
		RegressionResult: reg,
		TotalScore:       a.engine.ErrorScore(),
	}
}

func symbolOf(series *model.PriceSeries) string {
	if series == nil {
		return ""
	}
	return series.Symbol
}

func closesOf(series *model.PriceSeries) []float64 {
	if series == nil {
		return []float64{}
	}
	return series.Closes()
}

// IsErrorResult reports whether an analysis ended in the Error shape.
func IsErrorResult(res model.AnalysisResult) bool {
	return res.TotalScore.Rating == model.RatingError
}
