package recorder

import "StockScreener/internal/model"

// NoopRecorder is a no-op implementation used when no execution log is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAttempt(_ string, _ model.ExecutionAttempt) error { return nil }
func (n *NoopRecorder) RecordRun(_ *RunRecord) error                           { return nil }
func (n *NoopRecorder) Close() error                                           { return nil }
