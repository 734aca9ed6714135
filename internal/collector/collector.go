package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"TrendScope/internal/model"
)

// Collector turns raw fetcher output into a validated PriceSeries.
type Collector struct {
	fetcher Fetcher
	logger  arbor.ILogger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, logger arbor.ILogger) *Collector {
	if logger == nil {
		logger = arbor.NewLogger()
	}
	return &Collector{fetcher: fetcher, logger: logger}
}

// Fetcher returns the underlying data source.
func (c *Collector) Fetcher() Fetcher { return c.fetcher }

// FetchSeries loads [start, end] for symbol. Bars with a non-positive close
// are dropped with a warning; repeated dates keep the latest bar.
func (c *Collector) FetchSeries(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	bars, err := c.fetcher.FetchHistory(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, c.fetcher.Name(), err)
	}

	clean := make([]model.Bar, 0, len(bars))
	dropped := 0
	for _, b := range bars {
		if b.Close <= 0 {
			dropped++
			continue
		}
		clean = append(clean, b)
	}
	if dropped > 0 {
		c.logger.Warn().Str("symbol", symbol).Int("dropped", dropped).Msg("dropped bars with non-positive close")
	}

	series := model.NewPriceSeries(symbol, normalizeBars(clean))
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("series %s: %w", symbol, err)
	}

	c.logger.Info().Str("symbol", symbol).Str("source", c.fetcher.Name()).Int("bars", series.Len()).
		Str("first", series.First().Time.Format("2006-01-02")).
		Str("last", series.Last().Time.Format("2006-01-02")).
		Msg("series loaded")
	return series, nil
}
