package model

import "errors"

var (
	// ErrEmptyInput means the series is absent or has no rows.
	ErrEmptyInput = errors.New("empty input series")
	// ErrBenchmarkUnavailable means the benchmark source returned nothing or failed.
	ErrBenchmarkUnavailable = errors.New("benchmark unavailable")
	// ErrRegressionFailure means the curve fit could not be computed.
	ErrRegressionFailure = errors.New("regression failed")
	// ErrScoringFailure means a scoring stage could not produce a value.
	ErrScoringFailure = errors.New("scoring failed")
	// ErrLengthMismatch means parallel sequences differ in length.
	ErrLengthMismatch = errors.New("sequence length mismatch")
	// ErrInvalidSeries means the series breaks ordering or price constraints.
	ErrInvalidSeries = errors.New("invalid price series")
)
