package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"TrendScope/internal/analysis"
	"TrendScope/internal/collector"
	"TrendScope/internal/config"
	"TrendScope/internal/logger"
	"TrendScope/internal/model"
	"TrendScope/internal/strategy"
)

const dateLayout = "2006-01-02"

// app carries the loaded configuration and the components built from it.
type app struct {
	cfg       *config.Config
	logger    arbor.ILogger
	fetcher   collector.Fetcher
	collector *collector.Collector
	benchmark *collector.BenchmarkProvider
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.File)

	fetcher, err := newFetcher(cfg.DataSource, log)
	if err != nil {
		return nil, err
	}
	log.Info().Str("data_source", fetcher.Name()).Str("benchmark", cfg.Benchmark.Symbol).Msg("components ready")

	return &app{
		cfg:       cfg,
		logger:    log,
		fetcher:   fetcher,
		collector: collector.NewCollector(fetcher, log),
		benchmark: collector.NewBenchmarkProvider(fetcher, cfg.Benchmark.Symbol, cfg.Benchmark.Fallback, log),
	}, nil
}

// newFetcher builds the price source named by the provider setting.
func newFetcher(ds config.DataSourceConfig, log arbor.ILogger) (collector.Fetcher, error) {
	switch ds.Provider {
	case "", "yahoo":
		return collector.NewYahooFetcher(ds.Proxy,
			collector.WithYahooRateLimit(ds.RateLimit),
			collector.WithYahooLogger(log)), nil
	case "financego":
		return collector.NewFinanceGoFetcher(ds.RateLimit, log), nil
	case "rest":
		return collector.NewRestFetcher(ds.BaseURL, ds.APIKey, ds.Proxy, ds.RateLimit, log), nil
	case "mock":
		return &collector.MockFetcher{Price: 100, DailyGrowth: 0.0004}, nil
	default:
		return nil, fmt.Errorf("unknown data source provider %q", ds.Provider)
	}
}

// analyzer builds the composite analyzer. futureDays < 0 uses the configured horizon.
func (a *app) analyzer(noJitter bool, futureDays int) *analysis.Analyzer {
	opts := []strategy.Option{strategy.WithWeights(a.cfg.Scoring.Weights)}
	if noJitter || !a.cfg.Scoring.JitterEnabled() {
		opts = append(opts, strategy.WithJitter(strategy.NoJitter))
	}
	if futureDays < 0 {
		futureDays = a.cfg.Analysis.FutureDays
	}
	return analysis.NewAnalyzer(a.benchmark, strategy.NewEngine(opts...), futureDays, a.logger)
}

func (a *app) rollingOptions(lookback, crossover int) analysis.RollingOptions {
	opts := analysis.RollingOptions{
		LookbackDays:    a.cfg.Analysis.LookbackDays,
		CrossoverDays:   a.cfg.Analysis.CrossoverDays,
		MinObservations: a.cfg.Analysis.MinObservations,
		Workers:         a.cfg.Analysis.Workers,
	}
	if lookback > 0 {
		opts.LookbackDays = lookback
	}
	if crossover > 0 {
		opts.CrossoverDays = crossover
	}
	return opts
}

func (a *app) loadSeries(ctx context.Context, symbol, from, to string) (*model.PriceSeries, error) {
	start, end, err := dateRange(from, to, a.cfg.Analysis.HistoryDays, time.Now())
	if err != nil {
		return nil, err
	}
	return a.collector.FetchSeries(ctx, symbol, start, end)
}

// dateRange resolves --from/--to. An empty end means today and an empty
// start means historyDays before the end.
func dateRange(from, to string, historyDays int, now time.Time) (time.Time, time.Time, error) {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to %q: %w", to, err)
		}
		end = t
	}
	start := end.AddDate(0, 0, -historyDays)
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from %q: %w", from, err)
		}
		start = t
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from %s must be before --to %s",
			start.Format(dateLayout), end.Format(dateLayout))
	}
	return start, end, nil
}
