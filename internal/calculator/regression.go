package calculator

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"TrendScope/internal/model"
)

// DefaultFutureDays is the default forecast horizon appended to the history.
const DefaultFutureDays = 180

const (
	equationNoData = "No data available"
	equationFailed = "Regression failed"
)

// quadFit is a fitted ln(close) = intercept + linear·x + quad·x² with x = days/maxX.
type quadFit struct {
	intercept float64
	linear    float64
	quad      float64
	rSquared  float64
	stdDev    float64
	maxX      float64
}

func (f quadFit) predict(xNorm float64) float64 {
	return f.intercept + f.linear*xNorm + f.quad*xNorm*xNorm
}

// FitCurve fits a quadratic regression to log-price against normalized elapsed
// days and extends it futureDays points past the history with ±2σ bands.
// On empty input or fit failure it returns the documented fallback result
// together with an error wrapping model.ErrEmptyInput or model.ErrRegressionFailure.
func FitCurve(times []time.Time, closes []float64, futureDays int) (model.RegressionResult, error) {
	if len(closes) == 0 {
		return EmptyRegression(equationNoData), model.ErrEmptyInput
	}
	if futureDays < 0 {
		futureDays = 0
	}

	fit, err := fitLogQuadratic(times, closes)
	if err != nil {
		return FailedRegression(closes, equationFailed), err
	}

	total := len(closes) + futureDays
	predictions := make([]float64, total)
	upper := make([]float64, total)
	lower := make([]float64, total)
	for i := 0; i < total; i++ {
		// Forecast points are positional and share the history's normalization.
		logPred := fit.predict(float64(i) / fit.maxX)
		predictions[i] = math.Exp(logPred)
		upper[i] = math.Exp(logPred + 2*fit.stdDev)
		lower[i] = math.Exp(logPred - 2*fit.stdDev)
	}

	coefficients := [3]float64{0, fit.linear, fit.quad}
	maxX := int(fit.maxX)
	return model.RegressionResult{
		Coefficients: coefficients,
		Intercept:    fit.intercept,
		RSquared:     fit.rSquared,
		StdDev:       fit.stdDev,
		Predictions:  predictions,
		UpperBand:    upper,
		LowerBand:    lower,
		Equation:     FormatEquation(coefficients, fit.intercept, maxX),
		MaxX:         maxX,
	}, nil
}

// FitSeries is FitCurve over a PriceSeries.
func FitSeries(series *model.PriceSeries, futureDays int) (model.RegressionResult, error) {
	if series.Empty() {
		return EmptyRegression(equationNoData), model.ErrEmptyInput
	}
	return FitCurve(series.Times(), series.Closes(), futureDays)
}

// RSquaredOnly returns the R² of the quadratic log-price fit without forecasting.
func RSquaredOnly(times []time.Time, closes []float64) (float64, error) {
	fit, err := fitLogQuadratic(times, closes)
	if err != nil {
		return 0, err
	}
	return fit.rSquared, nil
}

// EmptyRegression is the zeroed result for a series with no rows.
func EmptyRegression(equation string) model.RegressionResult {
	return model.RegressionResult{
		Predictions: []float64{},
		UpperBand:   []float64{},
		LowerBand:   []float64{},
		Equation:    equation,
	}
}

// FailedRegression echoes the raw closes as prediction and bands.
func FailedRegression(closes []float64, equation string) model.RegressionResult {
	return model.RegressionResult{
		Predictions: append([]float64{}, closes...),
		UpperBand:   append([]float64{}, closes...),
		LowerBand:   append([]float64{}, closes...),
		Equation:    equation,
		MaxX:        len(closes),
	}
}

func fitLogQuadratic(times []time.Time, closes []float64) (quadFit, error) {
	n := len(closes)
	if n == 0 {
		return quadFit{}, model.ErrEmptyInput
	}
	if len(times) != n {
		return quadFit{}, fmt.Errorf("%w: %d dates for %d closes", model.ErrLengthMismatch, len(times), n)
	}
	if n < 3 {
		return quadFit{}, fmt.Errorf("%w: %d points cannot determine a quadratic", model.ErrRegressionFailure, n)
	}

	xs := ElapsedDays(times)
	maxX := floats.Max(xs)
	if maxX <= 0 {
		return quadFit{}, fmt.Errorf("%w: series spans zero days", model.ErrRegressionFailure)
	}

	design := mat.NewDense(n, 3, nil)
	y := make([]float64, n)
	for i, c := range closes {
		if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return quadFit{}, fmt.Errorf("%w: close %.4f at index %d", model.ErrRegressionFailure, c, i)
		}
		xn := xs[i] / maxX
		design.Set(i, 0, 1)
		design.Set(i, 1, xn)
		design.Set(i, 2, xn*xn)
		y[i] = math.Log(c)
	}

	var qr mat.QR
	qr.Factorize(design)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, y)); err != nil {
		return quadFit{}, fmt.Errorf("%w: %v", model.ErrRegressionFailure, err)
	}

	fit := quadFit{
		intercept: beta.AtVec(0),
		linear:    beta.AtVec(1),
		quad:      beta.AtVec(2),
		maxX:      maxX,
	}
	if math.IsNaN(fit.intercept) || math.IsNaN(fit.linear) || math.IsNaN(fit.quad) {
		return quadFit{}, fmt.Errorf("%w: non-finite coefficients", model.ErrRegressionFailure)
	}

	fitted := make([]float64, n)
	residuals := make([]float64, n)
	for i := range y {
		fitted[i] = fit.predict(xs[i] / maxX)
		residuals[i] = y[i] - fitted[i]
	}
	fit.rSquared = rSquared(fitted, y, residuals)
	_, fit.stdDev = stat.PopMeanStdDev(residuals, nil)
	return fit, nil
}

// rSquared follows the convention that a constant target is perfectly
// explained only when every residual is zero.
func rSquared(fitted, y, residuals []float64) float64 {
	r2 := stat.RSquaredFrom(fitted, y, nil)
	if !math.IsNaN(r2) && !math.IsInf(r2, 0) {
		return r2
	}
	for _, r := range residuals {
		if math.Abs(r) > 1e-12 {
			return 0
		}
	}
	return 1
}

// ElapsedDays returns whole calendar days since the first date.
func ElapsedDays(times []time.Time) []float64 {
	xs := make([]float64, len(times))
	if len(times) == 0 {
		return xs
	}
	for i, t := range times {
		xs[i] = float64(DaysBetween(times[0], t))
	}
	return xs
}

// DaysBetween counts calendar days from a to b, ignoring time of day.
func DaysBetween(a, b time.Time) int {
	ca := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	cb := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(cb.Sub(ca).Hours() / 24)
}
