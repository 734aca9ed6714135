package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"TrendScope/internal/model"
)

// MockFetcher returns controllable data for development and testing.
// Symbols present in Data are served from it; any other symbol gets a
// generated weekday series starting at Price and compounding DailyGrowth.
type MockFetcher struct {
	Price       float64
	DailyGrowth float64
	Data        map[string][]model.Bar
	Err         error // returned for every call when set

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Data[symbol]; ok {
		out := make([]model.Bar, 0, len(bars))
		for _, b := range bars {
			if inRange(b.Time, start, end) {
				out = append(out, b)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
		}
		return out, nil
	}
	return GenerateBars(start, end, m.Price, m.DailyGrowth), nil
}

// Calls returns the symbols requested so far.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// GenerateBars builds a weekday-only series over [start, end] with a small
// deterministic wobble around exponential growth.
func GenerateBars(start, end time.Time, basePrice, dailyGrowth float64) []model.Bar {
	if basePrice <= 0 {
		basePrice = 100
	}
	var bars []model.Bar
	i := 0
	for d := dayOf(start); !d.After(dayOf(end)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * math.Pow(1+dailyGrowth, float64(i)) * (1 + 0.01*math.Sin(float64(i)/5))
		bars = append(bars, model.Bar{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}
