package strategy

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/model"
)

// oneYear has strengths that saturate for coefficients of magnitude ~1.
var oneYear = AssetProfile{AnnualVolatility: 0.2, PeriodDays: 252}

func TestScoreTrend_Branches(t *testing.T) {
	tests := []struct {
		name     string
		quad     float64
		linear   float64
		r2       float64
		wantType model.TrendType
		want     float64
	}{
		{"accelerating up saturates and clamps", 1, 1, 1, model.TrendAcceleratingUp, 100},
		{"accelerating up discounted by fit", 1, 1, 0.5, model.TrendAcceleratingUp, 110 * 0.7},
		{"accelerating down clamps at zero", -1, -1, 1, model.TrendAcceleratingDown, 0},
		{"reversal up", 1, -1, 1, model.TrendReversalUp, 70},
		{"reversal down strong linear", -1, 1, 1, model.TrendReversalDown, 85},
		{"reversal down curve dominates", -1, 0.01, 1, model.TrendReversalDown, 25},
		{"reversal down mild", -0.0001, 0.1, 1, model.TrendReversalDown, 60},
		{"flat quadratic", 0, 0.3, 1, model.TrendFlat, 50},
		{"flat discounted", 0, 0.3, 0, model.TrendFlat, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScoreTrend(tt.quad, tt.linear, tt.r2, oneYear)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Details.Type)
			assert.InDelta(t, tt.want, got.Score, 1e-9)
			assert.GreaterOrEqual(t, got.Score, 0.0)
			assert.LessOrEqual(t, got.Score, 100.0)
		})
	}
}

func TestScoreTrend_RatioAndCredibility(t *testing.T) {
	got, err := ScoreTrend(-0.1134, 0.47, 0.9505, oneYear)
	require.NoError(t, err)
	assert.InDelta(t, 0.1134/0.47, got.Details.Ratio, 1e-12)
	assert.Equal(t, 5, got.Details.CredibilityLevel)
	assert.Equal(t, -0.1134, got.Details.QuadCoef)
	assert.Equal(t, 0.47, got.Details.LinearCoef)

	got, err = ScoreTrend(0.2, 0, 0.5, oneYear)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.Details.Ratio, 1))
}

func TestCredibilityBands(t *testing.T) {
	for r2, want := range map[float64]int{0.95: 5, 0.90: 5, 0.85: 4, 0.75: 3, 0.65: 2, 0.59: 1, 0: 1} {
		assert.Equal(t, want, credibility(r2), "r2=%v", r2)
	}
}

func TestScoreTrend_FailureFallsBackToNeutral(t *testing.T) {
	for _, p := range []AssetProfile{
		{AnnualVolatility: 0, PeriodDays: 252},
		{AnnualVolatility: math.NaN(), PeriodDays: 252},
		{AnnualVolatility: 0.2, PeriodDays: 0},
	} {
		got, err := ScoreTrend(0.1, 0.2, 0.9, p)
		assert.ErrorIs(t, err, model.ErrScoringFailure)
		assert.Equal(t, 50.0, got.Score)
		assert.Zero(t, got.Details.Ratio)
		assert.Equal(t, 1, got.Details.CredibilityLevel)
	}
}

func TestTrendDetails_UnboundedRatioMarshalsAsNull(t *testing.T) {
	got, err := ScoreTrend(0.2, 0, 0.5, oneYear)
	require.NoError(t, err)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"ratio":null`)
	assert.Contains(t, string(raw), `"type":"flat"`)
}
