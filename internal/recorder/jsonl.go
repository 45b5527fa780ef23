package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"StockScreener/internal/model"
)

// JSONLRecorder appends one JSON object per line to the execution log.
type JSONLRecorder struct {
	f  *os.File
	mu sync.Mutex
}

type jsonlEntry struct {
	Type    string                  `json:"type"`
	At      time.Time               `json:"at"`
	RunID   string                  `json:"run_id"`
	Attempt *model.ExecutionAttempt `json:"attempt,omitempty"`
	Run     *RunRecord              `json:"run,omitempty"`
}

// NewJSONLRecorder opens path for appending, creating parent directories.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open execution log: %w", err)
	}
	return &JSONLRecorder{f: f}, nil
}

func (r *JSONLRecorder) RecordAttempt(runID string, a model.ExecutionAttempt) error {
	return r.write(jsonlEntry{Type: "attempt", At: time.Now(), RunID: runID, Attempt: &a})
}

func (r *JSONLRecorder) RecordRun(run *RunRecord) error {
	return r.write(jsonlEntry{Type: "run", At: time.Now(), RunID: run.RunID, Run: run})
}

func (r *JSONLRecorder) write(e jsonlEntry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.f.Write(line); err != nil {
		return fmt.Errorf("append execution log: %w", err)
	}
	return nil
}

func (r *JSONLRecorder) Close() error {
	return r.f.Close()
}
