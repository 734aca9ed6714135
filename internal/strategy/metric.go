package strategy

import (
	"fmt"
	"math"

	"TrendScope/internal/model"
)

const (
	returnBaseScore = 60.0
	returnMinScore  = 25.0
	returnMaxScore  = 100.0
)

// ScoreReturn scores an annual return against the benchmark's.
// Each percentage point above the benchmark adds half a point; each point
// below costs two. The result is clamped to [25, 100] and rounded.
func ScoreReturn(value, benchmark float64) float64 {
	diff := (value - benchmark) * 100
	score := returnBaseScore
	if diff >= 0 {
		score += diff / 2
	} else {
		score += diff * 2
	}
	switch {
	case score > returnMaxScore:
		return returnMaxScore
	case score < returnMinScore:
		return returnMinScore
	}
	return math.RoundToEven(score)
}

// VolatilitySteps maps the asset/benchmark volatility ratio to a score.
// Upper bounds are inclusive; anything above the last step scores VolatilityFloor.
var VolatilitySteps = []struct {
	MaxRatio float64
	Score    float64
}{
	{0.6, 100},
	{0.7, 90},
	{0.8, 85},
	{0.9, 80},
	{1.0, 75},
	{1.2, 70},
	{1.4, 65},
	{1.6, 60},
	{1.8, 55},
	{2.0, 50},
}

// VolatilityFloor is the score for assets more than twice as volatile as the benchmark.
const VolatilityFloor = 40.0

// ScoreVolatility scores annual volatility relative to the benchmark; lower is better.
func ScoreVolatility(value, benchmark float64) (float64, error) {
	if benchmark <= 0 || math.IsNaN(benchmark) || math.IsInf(benchmark, 0) {
		return 0, fmt.Errorf("%w: benchmark volatility %v", model.ErrScoringFailure, benchmark)
	}
	if math.IsNaN(value) {
		return 0, fmt.Errorf("%w: volatility is NaN", model.ErrScoringFailure)
	}
	return VolatilityRatioScore(value / benchmark), nil
}

// VolatilityRatioScore looks up a precomputed volatility ratio.
func VolatilityRatioScore(ratio float64) float64 {
	for _, s := range VolatilitySteps {
		if ratio <= s.MaxRatio {
			return s.Score
		}
	}
	return VolatilityFloor
}
