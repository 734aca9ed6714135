package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"TrendScope/internal/calculator"
	"TrendScope/internal/model"
)

// DefaultBenchmarkSymbol is the S&P 500 index on Yahoo.
const DefaultBenchmarkSymbol = "^GSPC"

// BenchmarkProvider derives benchmark parameters over an asset's date range,
// substituting the configured fallback when live data is unusable.
// Parameters are recomputed on every call.
type BenchmarkProvider struct {
	fetcher  Fetcher
	symbol   string
	fallback model.BenchmarkParameters
	logger   arbor.ILogger
}

// NewBenchmarkProvider creates a provider for symbol with the given fallback.
func NewBenchmarkProvider(fetcher Fetcher, symbol string, fallback model.BenchmarkParameters, logger arbor.ILogger) *BenchmarkProvider {
	if symbol == "" {
		symbol = DefaultBenchmarkSymbol
	}
	if logger == nil {
		logger = arbor.NewLogger()
	}
	fallback.Source = model.BenchmarkFallback
	return &BenchmarkProvider{fetcher: fetcher, symbol: symbol, fallback: fallback, logger: logger}
}

// Symbol returns the benchmark ticker.
func (p *BenchmarkProvider) Symbol() string { return p.symbol }

// Fallback returns the configured reference baseline.
func (p *BenchmarkProvider) Fallback() model.BenchmarkParameters { return p.fallback }

// Parameters returns live benchmark parameters for [start, end], or the
// fallback when the benchmark cannot be fetched or measured.
func (p *BenchmarkProvider) Parameters(ctx context.Context, start, end time.Time) model.BenchmarkParameters {
	params, err := p.live(ctx, start, end)
	if err != nil {
		p.logger.Warn().Err(err).Str("symbol", p.symbol).Msg("benchmark unavailable, using fallback parameters")
		return p.fallback
	}
	p.logger.Debug().Str("symbol", p.symbol).
		Float64("annual_return", params.AnnualReturn).
		Float64("annual_volatility", params.AnnualVolatility).
		Float64("r2", params.RSquared).
		Msg("benchmark parameters computed")
	return params
}

func (p *BenchmarkProvider) live(ctx context.Context, start, end time.Time) (model.BenchmarkParameters, error) {
	if p.fetcher == nil {
		return model.BenchmarkParameters{}, fmt.Errorf("%w: no fetcher configured", model.ErrBenchmarkUnavailable)
	}
	bars, err := p.fetcher.FetchHistory(ctx, p.symbol, start, end)
	if err != nil {
		return model.BenchmarkParameters{}, fmt.Errorf("%w: %v", model.ErrBenchmarkUnavailable, err)
	}
	series := model.NewPriceSeries(p.symbol, bars)
	if series.Empty() {
		return model.BenchmarkParameters{}, fmt.Errorf("%w: empty series", model.ErrBenchmarkUnavailable)
	}

	annualReturn, err := calculator.SeriesReturn(series)
	if err != nil {
		return model.BenchmarkParameters{}, fmt.Errorf("%w: %v", model.ErrBenchmarkUnavailable, err)
	}
	annualVol, err := calculator.AnnualizedVolatility(series.Closes())
	if err != nil {
		return model.BenchmarkParameters{}, fmt.Errorf("%w: %v", model.ErrBenchmarkUnavailable, err)
	}
	fit, err := calculator.FitSeries(series, 0)
	if err != nil {
		return model.BenchmarkParameters{}, fmt.Errorf("%w: %v", model.ErrBenchmarkUnavailable, err)
	}

	return model.BenchmarkParameters{
		QuadCoef:         fit.Quad(),
		LinearCoef:       fit.Linear(),
		RSquared:         fit.RSquared,
		AnnualReturn:     annualReturn,
		AnnualVolatility: annualVol,
		Source:           model.BenchmarkLive,
	}, nil
}
