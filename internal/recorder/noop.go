package recorder

import "TrendScope/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(string, *model.AnalysisResult) error { return nil }
func (n *NoopRecorder) RecordCrossovers(string, string, []model.CrossoverEvent) error {
	return nil
}
func (n *NoopRecorder) RecentScores(string, int) ([]ScoreRecord, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                     { return nil }
