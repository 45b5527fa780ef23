package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
)

// Result is the persisted record of one screening run.
type Result struct {
	RunID           string                   `json:"run_id"`
	Slot            model.TimeSlot           `json:"slot"`
	Timestamp       time.Time                `json:"timestamp"`
	Tier            string                   `json:"tier"`
	Attempts        []model.ExecutionAttempt `json:"attempts"`
	Recommendations *model.RecommendationSet `json:"recommendations"`
	Delivery        notifier.DeliveryReport  `json:"delivery"`
}

// Archiver writes run results under a date/slot directory tree.
type Archiver struct {
	Dir string
}

func New(dir string) *Archiver {
	return &Archiver{Dir: dir}
}

// Archive writes res as indented JSON and returns the file path. An
// existing file is never replaced.
func (a *Archiver) Archive(res *Result) (string, error) {
	ts := res.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	dir := filepath.Join(a.Dir, ts.Format("2006-01-02"), string(res.Slot))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", ts.Format("150405"), res.RunID))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("result %s already archived: %w", path, err)
		}
		return "", fmt.Errorf("create result file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write result: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close result: %w", err)
	}
	return path, nil
}

// Load reads an archived result.
func Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse result: %w", err)
	}
	return &res, nil
}
