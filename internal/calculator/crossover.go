package calculator

import (
	"fmt"
	"time"

	"TrendScope/internal/model"
)

// FindCrossovers scans s1-s2 once and reports every sign change.
// A rise through zero is labelled "down" and a fall through zero "up"; the
// event value is the midpoint of both series just before the cross, and the
// date and price are taken at the crossing index.
func FindCrossovers(dates []time.Time, s1, s2, prices []float64) ([]model.CrossoverEvent, error) {
	n := len(s1)
	if len(s2) != n || len(dates) != n || len(prices) != n {
		return nil, fmt.Errorf("%w: dates=%d s1=%d s2=%d prices=%d",
			model.ErrLengthMismatch, len(dates), n, len(s2), len(prices))
	}

	var events []model.CrossoverEvent
	for i := 1; i < n; i++ {
		prev := s1[i-1] - s2[i-1]
		curr := s1[i] - s2[i]

		var dir model.CrossoverDirection
		switch {
		case prev <= 0 && curr > 0:
			dir = model.CrossDown
		case prev >= 0 && curr < 0:
			dir = model.CrossUp
		default:
			continue
		}
		events = append(events, model.CrossoverEvent{
			Date:      dates[i],
			Value:     (s1[i-1] + s2[i-1]) / 2,
			Direction: dir,
			Price:     prices[i],
		})
	}
	return events, nil
}
