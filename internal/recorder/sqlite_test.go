package recorder

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/model"
)

func sampleResult(symbol string, score float64, at time.Time) *model.AnalysisResult {
	return &model.AnalysisResult{
		Symbol:     symbol,
		AnalyzedAt: at,
		Benchmark:  model.BenchmarkParameters{Source: model.BenchmarkLive},
		RegressionResult: model.RegressionResult{
			RSquared: 0.91,
		},
		TotalScore: model.CompositeScore{
			Score:    score,
			RawScore: 66,
			Rating:   model.RatingVeryGood,
			Components: model.Components{
				Trend:      model.TrendComponent{Score: 80, Details: model.TrendDetails{Type: model.TrendAcceleratingUp}},
				Return:     model.MetricComponent{Score: 70, Value: 0.12},
				Volatility: model.MetricComponent{Score: 75, Value: 0.2},
			},
		},
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "trendscope.db"), nil)
	require.NoError(t, err)
	defer rec.Close()

	runA, runB := uuid.NewString(), uuid.NewString()
	base := time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)
	require.NoError(t, rec.RecordAnalysis(runA, sampleResult("AAPL", 71.5, base)))
	require.NoError(t, rec.RecordAnalysis(runB, sampleResult("AAPL", 74.25, base.Add(24*time.Hour))))
	require.NoError(t, rec.RecordAnalysis(runB, sampleResult("MSFT", 60, base)))

	got, err := rec.RecentScores("AAPL", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, runB, got[0].RunID)
	assert.Equal(t, 74.25, got[0].Score)
	assert.Equal(t, model.RatingVeryGood, got[0].Rating)
	assert.Equal(t, model.TrendAcceleratingUp, got[0].TrendType)
	assert.Equal(t, model.BenchmarkLive, got[0].BenchmarkSource)
	assert.Equal(t, 0.12, got[0].AnnualReturn)
	assert.Equal(t, base.Add(24*time.Hour).Unix(), got[0].AnalyzedAt.Unix())
	assert.Equal(t, runA, got[1].RunID)

	got, err = rec.RecentScores("AAPL", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = rec.RecentScores("NVDA", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteRecorder_Crossovers(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "trendscope.db"), nil)
	require.NoError(t, err)
	defer rec.Close()

	events := []model.CrossoverEvent{
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Value: 2, Direction: model.CrossDown, Price: 12},
		{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Value: 2, Direction: model.CrossUp, Price: 14},
	}
	require.NoError(t, rec.RecordCrossovers(uuid.NewString(), "AAPL", events))
	require.NoError(t, rec.RecordCrossovers(uuid.NewString(), "AAPL", nil))

	var count int
	require.NoError(t, rec.db.QueryRow(`SELECT COUNT(*) FROM crossovers WHERE symbol = ?`, "AAPL").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLiteRecorder_InfiniteRatioStored(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "trendscope.db"), nil)
	require.NoError(t, err)
	defer rec.Close()

	res := sampleResult("FLAT", 50, time.Now())
	res.TotalScore.Components.Trend.Details.Ratio = math.Inf(1)
	require.NoError(t, rec.RecordAnalysis(uuid.NewString(), res))

	var raw string
	require.NoError(t, rec.db.QueryRow(`SELECT score_json FROM analyses WHERE symbol = 'FLAT'`).Scan(&raw))
	assert.Contains(t, raw, `"ratio":null`)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordAnalysis("x", sampleResult("A", 1, time.Now())))
	assert.NoError(t, r.RecordCrossovers("x", "A", nil))
	scores, err := r.RecentScores("A", 3)
	assert.NoError(t, err)
	assert.Empty(t, scores)
	assert.NoError(t, r.Close())
}
