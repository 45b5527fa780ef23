package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockScreener/internal/model"
)

// RunFunc executes one bounded run for a slot.
type RunFunc func(ctx context.Context, slot model.TimeSlot) error

// Scheduler fires slot runs on cron specs.
type Scheduler struct {
	Cron    *cron.Cron
	Run     RunFunc
	Timeout time.Duration
	Ctx     context.Context
	Log     zerolog.Logger

	// async tracks runs started by RunAsync.
	async sync.WaitGroup
}

// NewScheduler creates a scheduler evaluating specs (with seconds) in loc.
// Overlapping firings of the same job are skipped.
func NewScheduler(ctx context.Context, loc *time.Location, run RunFunc, timeout time.Duration, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Run:     run,
		Timeout: timeout,
		Ctx:     ctx,
		Log:     log,
	}
}

// RegisterAll registers one job per slot in crons.
func (s *Scheduler) RegisterAll(crons map[string]string) error {
	for name := range crons {
		if _, err := model.ParseTimeSlot(name); err != nil {
			return fmt.Errorf("register task: %w", err)
		}
	}
	for _, slot := range model.AllSlots {
		spec, ok := crons[string(slot)]
		if !ok {
			continue
		}
		if _, err := s.Cron.AddFunc(spec, s.job(slot)); err != nil {
			return fmt.Errorf("register %s task: %w", slot, err)
		}
		s.Log.Info().Str("slot", string(slot)).Str("spec", spec).Msg("task registered")
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Int("tasks", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish, including
// those started by RunAsync.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.async.Wait()
	s.Log.Info().Msg("scheduler stopped")
}

// RunNow executes a slot immediately, outside the cron schedule.
func (s *Scheduler) RunNow(slot model.TimeSlot) {
	s.job(slot)()
}

// RunAsync starts RunNow in the background. Stop waits for it.
func (s *Scheduler) RunAsync(slot model.TimeSlot) {
	s.async.Add(1)
	go func() {
		defer s.async.Done()
		s.RunNow(slot)
	}()
}

func (s *Scheduler) job(slot model.TimeSlot) func() {
	return func() {
		ctx, cancel := context.WithTimeout(s.Ctx, s.Timeout)
		defer cancel()
		s.Log.Info().Str("slot", string(slot)).Msg("running scheduled task")
		if err := s.Run(ctx, slot); err != nil {
			s.Log.Error().Err(err).Str("slot", string(slot)).Msg("scheduled run failed")
		}
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
