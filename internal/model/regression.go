package model

// RegressionResult is the output of a quadratic log-price fit.
// Coefficients are indexed by power of the normalized time variable;
// index 0 stays zero because the constant term lives in Intercept.
type RegressionResult struct {
	Coefficients [3]float64 `json:"coefficients"`
	Intercept    float64    `json:"intercept"`
	RSquared     float64    `json:"r2"`
	StdDev       float64    `json:"std_dev"`
	Predictions  []float64  `json:"predictions"`
	UpperBand    []float64  `json:"upper_band"`
	LowerBand    []float64  `json:"lower_band"`
	Equation     string     `json:"equation"`
	MaxX         int        `json:"max_x"`
}

// Linear returns the linear coefficient.
func (r RegressionResult) Linear() float64 { return r.Coefficients[1] }

// Quad returns the quadratic coefficient.
func (r RegressionResult) Quad() float64 { return r.Coefficients[2] }
