package analysis

import (
	"fmt"

	"TrendScope/internal/calculator"
	"TrendScope/internal/model"
)

// Default moving-average periods for crossover scans.
const (
	DefaultFastPeriod = 50
	DefaultSlowPeriod = 200
)

// SMACrossovers scans the fast and slow simple moving averages of the
// closes for sign changes of fast − slow.
func SMACrossovers(series *model.PriceSeries, fast, slow int) ([]model.CrossoverEvent, error) {
	if series.Empty() {
		return nil, model.ErrEmptyInput
	}
	if fast >= slow {
		return nil, fmt.Errorf("fast period %d must be shorter than slow period %d", fast, slow)
	}
	closes := series.Closes()
	fastMA, err := calculator.SMASeries(closes, fast)
	if err != nil {
		return nil, fmt.Errorf("fast SMA(%d): %w", fast, err)
	}
	slowMA, err := calculator.SMASeries(closes, slow)
	if err != nil {
		return nil, fmt.Errorf("slow SMA(%d): %w", slow, err)
	}
	return calculator.FindCrossovers(series.Times(), fastMA, slowMA, closes)
}

// LatestCrossovers keeps only events dated on the final bar.
func LatestCrossovers(series *model.PriceSeries, events []model.CrossoverEvent) []model.CrossoverEvent {
	if series.Empty() {
		return nil
	}
	last := series.Last().Time
	var out []model.CrossoverEvent
	for _, e := range events {
		if calculator.DaysBetween(e.Date, last) == 0 {
			out = append(out, e)
		}
	}
	return out
}
