package recorder

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

func sampleAttempt(tier string, outcome model.AttemptOutcome) model.ExecutionAttempt {
	return model.ExecutionAttempt{
		Tier:      tier,
		Outcome:   outcome,
		StartedAt: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		Elapsed:   1500 * time.Millisecond,
		Error:     "boom",
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "db", "screener.db"))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecordAttempt("run-1", sampleAttempt("unified", model.OutcomeException)))
	require.NoError(t, r.RecordAttempt("run-1", sampleAttempt("integrated", model.OutcomeTimeout)))

	started := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	require.NoError(t, r.RecordRun(&RunRecord{
		RunID: "run-1", Slot: model.SlotMorningScan, StartedAt: started, Elapsed: 3 * time.Second,
		Status: StatusAllTiersExhausted, Attempts: 2, Error: "all tiers exhausted",
	}))
	require.NoError(t, r.RecordRun(&RunRecord{
		RunID: "run-2", Slot: model.SlotAfternoonScan, StartedAt: started.Add(time.Hour),
		Status: StatusSucceeded, Tier: "unified", Attempts: 1, Recommendations: 5, Delivered: true,
	}))

	runs, err := r.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.Equal(t, StatusSucceeded, runs[0].Status)
	assert.True(t, runs[0].Delivered)
	assert.Equal(t, 5, runs[0].Recommendations)
	assert.Equal(t, StatusAllTiersExhausted, runs[1].Status)
	assert.Equal(t, 3*time.Second, runs[1].Elapsed)
	assert.False(t, runs[1].Delivered)

	attempts, err := r.AttemptsFor("run-1")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "unified", attempts[0].Tier)
	assert.Equal(t, model.OutcomeException, attempts[0].Outcome)
	assert.Equal(t, model.OutcomeTimeout, attempts[1].Outcome)
	assert.Equal(t, 1500*time.Millisecond, attempts[1].Elapsed)
}

func TestSQLiteRecorder_DuplicateRunID(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "screener.db"))
	require.NoError(t, err)
	defer r.Close()

	rec := &RunRecord{RunID: "dup", Slot: model.SlotHeartbeat, StartedAt: time.Now(), Status: StatusMessageSent}
	require.NoError(t, r.RecordRun(rec))
	assert.Error(t, r.RecordRun(rec))
}

func TestJSONLRecorder_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "execution.jsonl")

	r, err := NewJSONLRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordAttempt("run-1", sampleAttempt("unified", model.OutcomeDataUnavailable)))
	require.NoError(t, r.Close())

	r, err = NewJSONLRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.RecordRun(&RunRecord{RunID: "run-1", Slot: model.SlotMorningScan, Status: StatusAllTiersExhausted}))
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []jsonlEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e jsonlEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, sc.Err())
	require.Len(t, entries, 2)
	assert.Equal(t, "attempt", entries[0].Type)
	assert.Equal(t, model.OutcomeDataUnavailable, entries[0].Attempt.Outcome)
	assert.Equal(t, "run", entries[1].Type)
	assert.Equal(t, StatusAllTiersExhausted, entries[1].Run.Status)
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()

	r, err := Open("", "")
	require.NoError(t, err)
	assert.IsType(t, &NoopRecorder{}, r)

	r, err = Open("", filepath.Join(dir, "x.jsonl"))
	require.NoError(t, err)
	assert.IsType(t, &JSONLRecorder{}, r)
	require.NoError(t, r.Close())

	r, err = Open(filepath.Join(dir, "x.db"), filepath.Join(dir, "y.jsonl"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRecorder{}, r)
	require.NoError(t, r.Close())
}
