package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), time.UTC, func(context.Context, model.TimeSlot) error { return nil }, time.Minute, zerolog.Nop())

	require.NoError(t, s.RegisterAll(map[string]string{
		"morning_scan": "0 0 9 * * 1-5",
		"heartbeat":    "0 30 8 * * 1-5",
	}))
	assert.Len(t, s.Cron.Entries(), 2)
}

func TestRegisterAll_Errors(t *testing.T) {
	s := NewScheduler(context.Background(), time.UTC, func(context.Context, model.TimeSlot) error { return nil }, time.Minute, zerolog.Nop())
	assert.Error(t, s.RegisterAll(map[string]string{"morning_scan": "not a cron"}))

	s = NewScheduler(context.Background(), time.UTC, func(context.Context, model.TimeSlot) error { return nil }, time.Minute, zerolog.Nop())
	assert.Error(t, s.RegisterAll(map[string]string{"lunch_scan": "0 0 12 * * *"}))
}

func TestRunNow_BoundsRunWithTimeout(t *testing.T) {
	var gotSlot model.TimeSlot
	var deadline time.Time
	run := func(ctx context.Context, slot model.TimeSlot) error {
		gotSlot = slot
		deadline, _ = ctx.Deadline()
		return errors.New("all tiers exhausted")
	}
	s := NewScheduler(context.Background(), time.UTC, run, time.Minute, zerolog.Nop())

	s.RunNow(model.SlotAfternoonScan)
	assert.Equal(t, model.SlotAfternoonScan, gotSlot)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestStop_WaitsForAsyncRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	run := func(ctx context.Context, slot model.TimeSlot) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	}
	s := NewScheduler(context.Background(), time.UTC, run, time.Minute, zerolog.Nop())
	s.Start()
	s.RunAsync(model.SlotHeartbeat)
	<-started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a run was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-stopped
	assert.True(t, finished.Load())
}
