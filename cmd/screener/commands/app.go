package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"StockScreener/internal/archive"
	"StockScreener/internal/config"
	"StockScreener/internal/logger"
	"StockScreener/internal/notifier"
	"StockScreener/internal/pipeline"
	"StockScreener/internal/recorder"
	"StockScreener/internal/strategy"
)

// app holds the wired components of one process.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	logCloser io.Closer
	rec       recorder.Recorder
	orch      *pipeline.Orchestrator
}

func newApp() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, closer, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Out:    os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: log, logCloser: closer}

	rec, err := recorder.Open(cfg.Storage.SQLitePath, cfg.Storage.ExecutionLog)
	if err != nil {
		log.Warn().Err(err).Msg("init execution log failed, using noop")
		rec = recorder.NewNoopRecorder()
	}
	a.rec = rec

	disp := notifier.NewDispatcher(notifier.FromConfig(cfg), log)
	if err := disp.Init(); err != nil {
		log.Warn().Err(err).Msg("init dispatcher")
	}

	tiers, minimal, err := pipeline.BuildTiers(cfg, strategy.DefaultPolicy(), log)
	if err != nil {
		a.close()
		return nil, err
	}
	a.orch = pipeline.New(tiers, minimal, disp, archive.New(cfg.Storage.ResultsDir), rec, log)
	a.orch.MetricsPath = cfg.Metrics.Textfile
	if loc, err := time.LoadLocation(cfg.Schedule.Timezone); err == nil {
		a.orch.Location = loc
	}

	log.Debug().Str("config", configFile).Str("env", cfg.Env).Int("tiers", len(tiers)).Msg("application wired")
	return a, nil
}

func (a *app) close() {
	if err := a.rec.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close execution log")
	}
	_ = a.logCloser.Close()
}
