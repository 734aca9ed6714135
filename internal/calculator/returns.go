package calculator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"TrendScope/internal/model"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// PctChanges returns close-to-close fractional changes (len = n-1).
func PctChanges(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	changes := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		changes = append(changes, closes[i]/closes[i-1]-1)
	}
	return changes
}

// AnnualizedVolatility is the sample standard deviation of daily changes scaled by √252.
func AnnualizedVolatility(closes []float64) (float64, error) {
	changes := PctChanges(closes)
	if len(changes) < 2 {
		return 0, fmt.Errorf("%w: need at least 3 closes for volatility, got %d", model.ErrScoringFailure, len(closes))
	}
	vol := stat.StdDev(changes, nil) * math.Sqrt(TradingDaysPerYear)
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return 0, fmt.Errorf("%w: non-finite volatility", model.ErrScoringFailure)
	}
	return vol, nil
}

// AnnualizedReturn compounds the start-to-end move over calendar days.
func AnnualizedReturn(startClose, endClose float64, days int) (float64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: series spans %d days", model.ErrScoringFailure, days)
	}
	if startClose <= 0 {
		return 0, fmt.Errorf("%w: start close %.4f", model.ErrScoringFailure, startClose)
	}
	r := math.Pow(endClose/startClose, 365/float64(days)) - 1
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: non-finite annual return", model.ErrScoringFailure)
	}
	return r, nil
}

// SeriesReturn computes AnnualizedReturn over the series' first and last bars.
func SeriesReturn(series *model.PriceSeries) (float64, error) {
	if series.Empty() {
		return 0, model.ErrEmptyInput
	}
	first, last := series.First(), series.Last()
	return AnnualizedReturn(first.Close, last.Close, DaysBetween(first.Time, last.Time))
}
