package model

import (
	"fmt"
	"time"
)

// Bar represents a single daily price record.
type Bar struct {
	Time      time.Time `json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Dividends float64   `json:"dividends"`
	Splits    float64   `json:"splits"`
}

// PriceSeries holds a date-ordered price history for one symbol.
// Analysis code treats it as read-only.
type PriceSeries struct {
	Symbol string
	Bars   []Bar
}

// NewPriceSeries wraps bars for a symbol.
func NewPriceSeries(symbol string, bars []Bar) *PriceSeries {
	return &PriceSeries{Symbol: symbol, Bars: bars}
}

// Len returns the number of bars; a nil series has zero length.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Empty reports whether the series is absent or has no rows.
func (s *PriceSeries) Empty() bool {
	return s.Len() == 0
}

// First returns the earliest bar. The series must not be empty.
func (s *PriceSeries) First() Bar { return s.Bars[0] }

// Last returns the latest bar. The series must not be empty.
func (s *PriceSeries) Last() Bar { return s.Bars[len(s.Bars)-1] }

// Closes returns a fresh copy of the close column.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, s.Len())
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Times returns a fresh copy of the date column.
func (s *PriceSeries) Times() []time.Time {
	times := make([]time.Time, s.Len())
	for i, b := range s.Bars {
		times[i] = b.Time
	}
	return times
}

// Between returns a sub-series with bars in [start, end].
func (s *PriceSeries) Between(start, end time.Time) *PriceSeries {
	out := &PriceSeries{Symbol: s.Symbol}
	for _, b := range s.Bars {
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		out.Bars = append(out.Bars, b)
	}
	return out
}

// Validate checks ordering, duplicates and close prices.
func (s *PriceSeries) Validate() error {
	if s.Empty() {
		return ErrEmptyInput
	}
	for i, b := range s.Bars {
		if b.Close <= 0 {
			return fmt.Errorf("%w: non-positive close %.4f on %s", ErrInvalidSeries, b.Close, b.Time.Format("2006-01-02"))
		}
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("%w: %s does not follow %s", ErrInvalidSeries,
				b.Time.Format("2006-01-02"), s.Bars[i-1].Time.Format("2006-01-02"))
		}
	}
	return nil
}
