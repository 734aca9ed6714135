package strategy

import (
	"fmt"
	"math"

	"TrendScope/internal/model"
)

// AssetProfile carries the asset-level measures that normalize trend
// coefficients. Benchmark trends are scored against the asset's profile too.
type AssetProfile struct {
	AnnualVolatility float64
	PeriodDays       int // number of observations in the series
}

const (
	neutralTrendScore = 50.0
	tradingDays       = 252.0
)

// CredibilityBands maps R² to a 1-5 credibility level.
var CredibilityBands = []struct {
	MinR2 float64
	Level int
}{
	{0.90, 5},
	{0.80, 4},
	{0.70, 3},
	{0.60, 2},
}

func credibility(r2 float64) int {
	for _, b := range CredibilityBands {
		if r2 >= b.MinR2 {
			return b.Level
		}
	}
	return 1
}

// ClassifyTrend labels a fit by the signs of its quadratic and linear terms.
func ClassifyTrend(quad, linear float64) model.TrendType {
	switch {
	case quad > 0 && linear > 0:
		return model.TrendAcceleratingUp
	case quad < 0 && linear < 0:
		return model.TrendAcceleratingDown
	case quad > 0 && linear < 0:
		return model.TrendReversalUp
	case quad < 0 && linear > 0:
		return model.TrendReversalDown
	default:
		return model.TrendFlat
	}
}

// FallbackTrend is the neutral trend component used when scoring fails.
func FallbackTrend(quad, linear float64) model.TrendComponent {
	return model.TrendComponent{
		Score: neutralTrendScore,
		Details: model.TrendDetails{
			Ratio:            0,
			CredibilityLevel: 1,
			QuadCoef:         quad,
			LinearCoef:       linear,
			Type:             model.TrendUnknown,
		},
	}
}

// ScoreTrend scores trend direction and strength on 0-100, 50 being neutral.
// Coefficients are normalized by the asset's volatility over its period,
// then the adjusted score is discounted by fit quality.
// On failure it returns FallbackTrend and an error wrapping model.ErrScoringFailure.
func ScoreTrend(quad, linear, r2 float64, profile AssetProfile) (model.TrendComponent, error) {
	vol := profile.AnnualVolatility
	if vol <= 0 || math.IsNaN(vol) || math.IsInf(vol, 0) {
		return FallbackTrend(quad, linear), fmt.Errorf("%w: trend needs positive volatility, got %v", model.ErrScoringFailure, vol)
	}
	if profile.PeriodDays <= 0 {
		return FallbackTrend(quad, linear), fmt.Errorf("%w: trend needs a positive period, got %d", model.ErrScoringFailure, profile.PeriodDays)
	}

	days := float64(profile.PeriodDays)
	volLinear := vol * math.Sqrt(days/tradingDays)
	volQuad := vol / math.Sqrt(days)

	future := math.Min(1, math.Abs(quad/volQuad)/30)
	historic := math.Min(1, math.Abs(linear/volLinear))

	trendType := ClassifyTrend(quad, linear)
	score := neutralTrendScore
	switch trendType {
	case model.TrendAcceleratingUp:
		score += future*35 + historic*25
	case model.TrendAcceleratingDown:
		score -= future*35 + historic*25
	case model.TrendReversalUp:
		score += future*35 - historic*15
	case model.TrendReversalDown:
		// A strong linear uptrend outweighs the bending curve.
		switch {
		case historic > 0.7:
			score += historic * 35
		case future > historic:
			score -= future * 25
		default:
			score += historic * 20
		}
	}

	score *= 0.6 + 0.4*r2*r2
	score = math.Max(0, math.Min(100, score))
	if math.IsNaN(score) {
		return FallbackTrend(quad, linear), fmt.Errorf("%w: non-finite trend score", model.ErrScoringFailure)
	}

	ratio := math.Inf(1)
	if linear != 0 {
		ratio = math.Abs(quad / linear)
	}

	return model.TrendComponent{
		Score: score,
		Details: model.TrendDetails{
			Ratio:            ratio,
			CredibilityLevel: credibility(r2),
			QuadCoef:         quad,
			LinearCoef:       linear,
			Type:             trendType,
		},
	}, nil
}
