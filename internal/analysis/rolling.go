package analysis

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"TrendScope/internal/calculator"
	"TrendScope/internal/model"
)

// RollingOptions bounds the trailing windows of a rolling analysis.
type RollingOptions struct {
	LookbackDays    int // window for the R² fit
	CrossoverDays   int // window for high/low and positional metrics
	MinObservations int
	Workers         int
}

// DefaultRollingOptions uses one-year windows and 20 observations.
func DefaultRollingOptions() RollingOptions {
	return RollingOptions{LookbackDays: 365, CrossoverDays: 365, MinObservations: 20, Workers: 4}
}

func (o RollingOptions) withDefaults() RollingOptions {
	d := DefaultRollingOptions()
	if o.LookbackDays <= 0 {
		o.LookbackDays = d.LookbackDays
	}
	if o.CrossoverDays <= 0 {
		o.CrossoverDays = d.CrossoverDays
	}
	if o.MinObservations <= 0 {
		o.MinObservations = d.MinObservations
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	return o
}

// windowStart returns the first index of the trailing window ending at i.
// The window is the whole history up to i until that history spans more
// than bound days; from then on it holds only dates after t-bound.
func windowStart(times []time.Time, i, bound int) int {
	t := times[i]
	if calculator.DaysBetween(times[0], t) <= bound {
		return 0
	}
	cutoff := t.AddDate(0, 0, -bound)
	return sort.Search(i+1, func(j int) bool { return times[j].After(cutoff) })
}

// forEachIndex runs fn for 0..n-1 on at most workers goroutines.
func forEachIndex(ctx context.Context, n, workers int, fn func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Rolling evaluates every date of the series against its trailing windows.
// Dates whose technical window has fewer than MinObservations rows are
// omitted. Rows come back in date order.
func Rolling(ctx context.Context, series *model.PriceSeries, opts RollingOptions) ([]model.WindowRow, error) {
	if series.Empty() {
		return nil, model.ErrEmptyInput
	}
	opts = opts.withDefaults()
	times := series.Times()
	closes := series.Closes()
	n := len(closes)

	slots := make([]*model.WindowRow, n)
	err := forEachIndex(ctx, n, opts.Workers, func(i int) {
		techFrom := windowStart(times, i, opts.CrossoverDays)
		if i+1-techFrom < opts.MinObservations {
			return
		}
		window := closes[techFrom : i+1]
		high, low, err := calculator.CloseRange(window)
		if err != nil {
			return
		}
		current := closes[i]
		bar := series.Bars[i]
		row := &model.WindowRow{
			Date:                times[i],
			Close:               current,
			High:                high,
			Low:                 low,
			RetracementRatioPct: calculator.RetracementRatioPct(current, high, low),
			PricePositionPct:    calculator.PriceAppreciationPct(current, high, low),
			Open:                bar.Open,
			Volume:              bar.Volume,
			Dividends:           bar.Dividends,
			Splits:              bar.Splits,
			Observations:        len(window),
			WindowStart:         times[techFrom],
		}
		row.R2Pct = windowR2Pct(times, closes, windowStart(times, i, opts.LookbackDays), i, opts.MinObservations)
		slots[i] = row
	})
	if err != nil {
		return nil, err
	}

	rows := make([]model.WindowRow, 0, n)
	for _, r := range slots {
		if r != nil {
			rows = append(rows, *r)
		}
	}
	return rows, nil
}

// windowR2Pct fits [from, i] and returns R² in percent, or nil when the
// window is too short or the fit fails.
func windowR2Pct(times []time.Time, closes []float64, from, i, minObs int) *float64 {
	if i+1-from < minObs {
		return nil
	}
	r2, err := calculator.RSquaredOnly(times[from:i+1], closes[from:i+1])
	if err != nil {
		return nil
	}
	pct := r2 * 100
	return &pct
}

// RollingR2 returns the R² percentage of a fresh fit over each date's
// lookback window, skipping dates whose window is too short or unfittable.
func RollingR2(ctx context.Context, series *model.PriceSeries, opts RollingOptions) ([]model.R2Point, error) {
	if series.Empty() {
		return nil, model.ErrEmptyInput
	}
	opts = opts.withDefaults()
	times := series.Times()
	closes := series.Closes()

	slots := make([]*float64, len(closes))
	err := forEachIndex(ctx, len(closes), opts.Workers, func(i int) {
		slots[i] = windowR2Pct(times, closes, windowStart(times, i, opts.LookbackDays), i, opts.MinObservations)
	})
	if err != nil {
		return nil, err
	}

	points := make([]model.R2Point, 0, len(slots))
	for i, v := range slots {
		if v != nil {
			points = append(points, model.R2Point{Date: times[i], R2Pct: *v})
		}
	}
	return points, nil
}
