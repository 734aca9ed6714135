package collector

import (
	"context"
	"errors"
	"sort"
	"time"

	"TrendScope/internal/model"
)

// ErrNoData is returned when a source answers but has no bars for the range.
var ErrNoData = errors.New("no data returned")

// Fetcher retrieves daily bars for a symbol over [start, end].
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error)
	Name() string
}

// dayOf truncates t to its calendar date in UTC.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// inRange reports whether t falls on a calendar day within [start, end].
func inRange(t, start, end time.Time) bool {
	d := dayOf(t)
	if !start.IsZero() && d.Before(dayOf(start)) {
		return false
	}
	if !end.IsZero() && d.After(dayOf(end)) {
		return false
	}
	return true
}

// normalizeBars sorts by date and keeps the last bar seen for any repeated date.
func normalizeBars(bars []model.Bar) []model.Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
