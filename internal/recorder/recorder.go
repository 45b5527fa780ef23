package recorder

import (
	"time"

	"StockScreener/internal/model"
)

// RunStatus is the final state of one invocation.
type RunStatus string

const (
	StatusSucceeded         RunStatus = "succeeded"
	StatusAllTiersExhausted RunStatus = "all_tiers_exhausted"
	StatusMessageSent       RunStatus = "message_sent"
	StatusMessageFailed     RunStatus = "message_failed"
)

// RunRecord summarises one invocation of the pipeline.
type RunRecord struct {
	RunID           string         `json:"run_id"`
	Slot            model.TimeSlot `json:"slot"`
	StartedAt       time.Time      `json:"started_at"`
	Elapsed         time.Duration  `json:"elapsed"`
	Status          RunStatus      `json:"status"`
	Tier            string         `json:"tier,omitempty"`
	Attempts        int            `json:"attempts"`
	Recommendations int            `json:"recommendations"`
	Delivered       bool           `json:"delivered"`
	ResultPath      string         `json:"result_path,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// Recorder persists the execution log.
type Recorder interface {
	RecordAttempt(runID string, a model.ExecutionAttempt) error
	RecordRun(run *RunRecord) error
	Close() error
}

// Open picks the backend: SQLite when sqlitePath is set, else the JSONL
// file when jsonlPath is set, else a no-op recorder.
func Open(sqlitePath, jsonlPath string) (Recorder, error) {
	switch {
	case sqlitePath != "":
		return NewSQLiteRecorder(sqlitePath)
	case jsonlPath != "":
		return NewJSONLRecorder(jsonlPath)
	default:
		return NewNoopRecorder(), nil
	}
}
