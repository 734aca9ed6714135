package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/calculator"
	"TrendScope/internal/model"
)

func TestRolling_SkipsShortWindows(t *testing.T) {
	series := quadraticSeries("Q", 30, 4, 0.3, 0.1)

	rows, err := Rolling(context.Background(), series, DefaultRollingOptions())
	require.NoError(t, err)
	require.Len(t, rows, 11)
	assert.Equal(t, series.Bars[19].Time, rows[0].Date)
	assert.Equal(t, 20, rows[0].Observations)
	assert.Equal(t, series.Last().Time, rows[len(rows)-1].Date)
}

func TestRolling_WindowNeverSpansMoreThanBound(t *testing.T) {
	series := wobblySeries("W", 400)
	opts := RollingOptions{LookbackDays: 60, CrossoverDays: 100, MinObservations: 20, Workers: 3}

	rows, err := Rolling(context.Background(), series, opts)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	for i, r := range rows {
		if i > 0 {
			assert.True(t, rows[i-1].Date.Before(r.Date), "rows out of order at %d", i)
		}
		assert.GreaterOrEqual(t, r.Observations, 20)
		if calculator.DaysBetween(series.First().Time, r.Date) > 100 {
			assert.Less(t, calculator.DaysBetween(r.WindowStart, r.Date), 100)
		}

		window := series.Between(r.WindowStart, r.Date).Closes()
		assert.Len(t, window, r.Observations)
		high, low, err := calculator.CloseRange(window)
		require.NoError(t, err)
		assert.Equal(t, high, r.High)
		assert.Equal(t, low, r.Low)
		if r.High > r.Low {
			assert.InDelta(t, 100, r.RetracementRatioPct+r.PricePositionPct, 1e-9)
		}
		require.NotNil(t, r.R2Pct)
		assert.GreaterOrEqual(t, *r.R2Pct, 0.0)
		assert.LessOrEqual(t, *r.R2Pct, 100.0+1e-9)
	}
}

func TestRolling_NilR2WhenLookbackTooShort(t *testing.T) {
	series := quadraticSeries("Q", 60, 4, 0.3, 0.1)
	opts := RollingOptions{LookbackDays: 10, CrossoverDays: 365, MinObservations: 20}

	rows, err := Rolling(context.Background(), series, opts)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, r := range rows {
		assert.Nil(t, r.R2Pct)
	}
}

func TestRolling_WorkerCountDoesNotChangeResult(t *testing.T) {
	series := wobblySeries("W", 300)

	serial, err := Rolling(context.Background(), series, RollingOptions{Workers: 1})
	require.NoError(t, err)
	parallel, err := Rolling(context.Background(), series, RollingOptions{Workers: 8})
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestRolling_Errors(t *testing.T) {
	_, err := Rolling(context.Background(), nil, DefaultRollingOptions())
	assert.ErrorIs(t, err, model.ErrEmptyInput)

	_, err = RollingR2(context.Background(), model.NewPriceSeries("E", nil), DefaultRollingOptions())
	assert.ErrorIs(t, err, model.ErrEmptyInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Rolling(ctx, wobblySeries("W", 100), DefaultRollingOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRollingR2(t *testing.T) {
	series := quadraticSeries("Q", 120, 4, 0.3, 0.1)

	points, err := RollingR2(context.Background(), series, RollingOptions{LookbackDays: 365, MinObservations: 20})
	require.NoError(t, err)
	require.Len(t, points, 101)
	for _, p := range points {
		assert.InDelta(t, 100, p.R2Pct, 1e-6)
	}
	assert.Equal(t, series.Bars[19].Time, points[0].Date)
}
