package calculator

import "errors"

// SMASeries returns a simple moving average aligned with prices. The first
// period-1 points hold the running mean so the output has no gaps and can be
// compared index by index with another series.
func SMASeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(prices) < period {
		return nil, errors.New("not enough data for SMA calculation")
	}
	out := make([]float64, len(prices))
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		n := period
		if i+1 < period {
			n = i + 1
		}
		out[i] = sum / float64(n)
	}
	return out, nil
}
