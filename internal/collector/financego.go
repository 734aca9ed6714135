package collector

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"TrendScope/internal/model"
)

// FinanceGoFetcher implements Fetcher with the piquette/finance-go chart iterator.
// It reports no dividend or split events.
type FinanceGoFetcher struct {
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewFinanceGoFetcher creates a fetcher limited to rps requests per second.
func NewFinanceGoFetcher(rps int, logger arbor.ILogger) *FinanceGoFetcher {
	if rps <= 0 {
		rps = DefaultRateLimit
	}
	if logger == nil {
		logger = arbor.NewLogger()
	}
	return &FinanceGoFetcher{
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		logger:  logger,
	}
}

func (f *FinanceGoFetcher) Name() string { return "financego" }

func (f *FinanceGoFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("financego rate limit: %w", err)
	}

	from := dayOf(start)
	to := dayOf(end).AddDate(0, 0, 1)
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&from),
		End:      datetime.New(&to),
		Interval: datetime.OneDay,
	})

	var bars []model.Bar
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar := convertChartBar(iter.Bar())
		if bar.Close <= 0 || !inRange(bar.Time, start, end) {
			continue
		}
		bars = append(bars, bar)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("financego %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("financego %s: %w", symbol, ErrNoData)
	}

	f.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("financego history loaded")
	return normalizeBars(bars), nil
}

func convertChartBar(b *finance.ChartBar) model.Bar {
	return model.Bar{
		Time:   dayOf(time.Unix(int64(b.Timestamp), 0).UTC()),
		Open:   decimalFloat(b.Open),
		High:   decimalFloat(b.High),
		Low:    decimalFloat(b.Low),
		Close:  decimalFloat(b.Close),
		Volume: float64(b.Volume),
	}
}

func decimalFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
