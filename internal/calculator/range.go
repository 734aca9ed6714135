package calculator

import (
	"errors"
	"math"
)

// CloseRange scans closes and returns the highest and lowest values.
func CloseRange(closes []float64) (high, low float64, err error) {
	if len(closes) == 0 {
		return 0, 0, errors.New("no closes provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, c := range closes {
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}
	}
	return high, low, nil
}

// PriceAppreciationPct returns where current sits within [low, high] as a percentage.
// A flat range yields 0.
func PriceAppreciationPct(current, high, low float64) float64 {
	total := high - low
	if total > 0 {
		return (current - low) / total * 100
	}
	return 0
}

// RetracementRatioPct returns how far current has pulled back from high,
// as a percentage of the range. A flat range yields 0.
func RetracementRatioPct(current, high, low float64) float64 {
	total := high - low
	if total > 0 {
		return (high - current) / total * 100
	}
	return 0
}
