package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"StockScreener/internal/archive"
	"StockScreener/internal/collector"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
	"StockScreener/internal/recorder"
)

// Notifier is the delivery side of a run.
type Notifier interface {
	SendCombinedRecommendations(ctx context.Context, slot model.TimeSlot, set *model.RecommendationSet, title string) notifier.DeliveryReport
	SendNotification(ctx context.Context, message, title string, urgent bool) notifier.DeliveryReport
	ChannelStatus() []notifier.ChannelState
}

// Archiver persists screening results.
type Archiver interface {
	Archive(res *archive.Result) (string, error)
}

// Outcome describes a finished run.
type Outcome struct {
	RunID      string
	Slot       model.TimeSlot
	Status     recorder.RunStatus
	Tier       string
	Attempts   []model.ExecutionAttempt
	Set        *model.RecommendationSet
	Delivery   notifier.DeliveryReport
	ResultPath string
}

// Orchestrator runs the tier chain for a slot, falls back on failure and
// hands the first result to the notifier.
type Orchestrator struct {
	Tiers       []Tier
	Minimal     Tier
	Notifier    Notifier
	Archiver    Archiver
	Recorder    recorder.Recorder
	MetricsPath string
	// Location is the market timezone used in titles and the heartbeat.
	// Nil means time.Local.
	Location *time.Location
	Log      zerolog.Logger

	now      func() time.Time
	newRunID func() string
}

// New creates an orchestrator. A nil recorder is replaced by a no-op one.
func New(tiers []Tier, minimal Tier, n Notifier, a Archiver, rec recorder.Recorder, log zerolog.Logger) *Orchestrator {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Orchestrator{
		Tiers:    tiers,
		Minimal:  minimal,
		Notifier: n,
		Archiver: a,
		Recorder: rec,
		Log:      log.With().Str("component", "pipeline").Logger(),
		now:      time.Now,
		newRunID: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] },
	}
}

// Run executes one invocation for slot. Tier failures never escape; the
// only error is ErrAllTiersExhausted.
func (o *Orchestrator) Run(ctx context.Context, slot model.TimeSlot) (*Outcome, error) {
	start := o.now()
	out := &Outcome{RunID: o.newRunID(), Slot: slot}
	m := metrics.NewRun()
	log := o.Log.With().Str("run_id", out.RunID).Str("slot", string(slot)).Logger()
	log.Info().Msg("run started")

	var runErr error
	if slot.IsScreening() {
		runErr = o.runScreening(ctx, slot, out, m, log)
	} else {
		o.runMessage(ctx, slot, out, log)
	}
	m.ObserveDelivery(out.Delivery)
	m.ObserveRun(slot, string(out.Status), start)

	rec := &recorder.RunRecord{
		RunID:           out.RunID,
		Slot:            slot,
		StartedAt:       start,
		Elapsed:         o.now().Sub(start),
		Status:          out.Status,
		Tier:            out.Tier,
		Attempts:        len(out.Attempts),
		Recommendations: out.Set.Total(),
		Delivered:       out.Delivery.Delivered(),
		ResultPath:      out.ResultPath,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if err := o.Recorder.RecordRun(rec); err != nil {
		log.Error().Err(err).Msg("record run")
	}
	if err := m.WriteTextfile(o.MetricsPath); err != nil {
		log.Warn().Err(err).Msg("write metrics")
	}

	ev := log.Info()
	if runErr != nil {
		ev = log.Error().Err(runErr)
	}
	ev.Str("status", string(out.Status)).Str("tier", out.Tier).
		Int("attempts", len(out.Attempts)).Dur("elapsed", rec.Elapsed).Msg("run finished")
	return out, runErr
}

func (o *Orchestrator) runScreening(ctx context.Context, slot model.TimeSlot, out *Outcome, m *metrics.Run, log zerolog.Logger) error {
	for _, t := range o.Tiers {
		if set, ok := o.attempt(ctx, t, slot, out, m, log); ok {
			o.deliver(ctx, slot, t.Name, set, out, m, log)
			return nil
		}
	}

	log.Warn().Int("attempts", len(out.Attempts)).Msg("tier chain exhausted, running minimal fallback")
	if set, ok := o.attempt(ctx, o.Minimal, slot, out, m, log); ok {
		o.deliver(ctx, slot, o.Minimal.Name, set, out, m, log)
		return nil
	}

	out.Status = recorder.StatusAllTiersExhausted
	last := out.Attempts[len(out.Attempts)-1]
	return fmt.Errorf("%w after %d attempts (last: %s)", ErrAllTiersExhausted, len(out.Attempts), last.Error)
}

// attempt runs one tier and records the attempt. ok is true on success.
func (o *Orchestrator) attempt(ctx context.Context, t Tier, slot model.TimeSlot, out *Outcome, m *metrics.Run, log zerolog.Logger) (*model.RecommendationSet, bool) {
	set, a := o.runTier(ctx, t, slot)
	out.Attempts = append(out.Attempts, a)
	m.ObserveAttempt(a)
	if err := o.Recorder.RecordAttempt(out.RunID, a); err != nil {
		log.Error().Err(err).Msg("record attempt")
	}

	if a.Outcome != model.OutcomeSuccess {
		log.Warn().Str("tier", t.Name).Str("outcome", string(a.Outcome)).
			Dur("elapsed", a.Elapsed).Str("error", a.Error).Msg("tier failed")
		return nil, false
	}
	log.Info().Str("tier", t.Name).Dur("elapsed", a.Elapsed).Int("recommendations", set.Total()).Msg("tier succeeded")
	return set, true
}

type tierResult struct {
	set *model.RecommendationSet
	err error
}

// runTier runs t in its own goroutine bounded by the tier timeout. A result
// arriving after the deadline is dropped.
func (o *Orchestrator) runTier(ctx context.Context, t Tier, slot model.TimeSlot) (*model.RecommendationSet, model.ExecutionAttempt) {
	start := o.now()
	tctx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	done := make(chan tierResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- tierResult{err: fmt.Errorf("%w: %v", errTierPanic, r)}
			}
		}()
		set, err := t.Run(tctx, slot)
		done <- tierResult{set: set, err: err}
	}()

	var res tierResult
	select {
	case res = <-done:
	case <-tctx.Done():
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			res.err = fmt.Errorf("%w after %s", ErrTierTimeout, t.Timeout)
		} else {
			res.err = tctx.Err()
		}
	}
	if res.err == nil && res.set == nil {
		res.err = fmt.Errorf("no result: %w", collector.ErrDataUnavailable)
	}

	a := model.ExecutionAttempt{
		Tier:      t.Name,
		StartedAt: start,
		Elapsed:   o.now().Sub(start),
		Outcome:   classify(res.err),
	}
	if res.err != nil {
		a.Error = (&TierFailure{Tier: t.Name, Outcome: a.Outcome, Err: res.err}).Error()
		return nil, a
	}
	return res.set, a
}

func (o *Orchestrator) deliver(ctx context.Context, slot model.TimeSlot, tier string, set *model.RecommendationSet, out *Outcome, m *metrics.Run, log zerolog.Logger) {
	out.Tier = tier
	out.Set = set
	out.Status = recorder.StatusSucceeded
	m.ObserveSet(set)

	out.Delivery = o.Notifier.SendCombinedRecommendations(ctx, slot, set, o.title(slot))
	if !out.Delivery.Succeeded() {
		log.Error().Msg("recommendations neither delivered nor backed up")
	}

	if o.Archiver == nil {
		return
	}
	path, err := o.Archiver.Archive(&archive.Result{
		RunID:           out.RunID,
		Slot:            slot,
		Timestamp:       o.now(),
		Tier:            tier,
		Attempts:        out.Attempts,
		Recommendations: set,
		Delivery:        out.Delivery,
	})
	if err != nil {
		log.Error().Err(err).Msg("archive result")
		return
	}
	out.ResultPath = path
	log.Debug().Str("path", path).Msg("result archived")
}

const testNotificationText = "This is a test notification from the stock screener. If you can read this, the channel works."

func (o *Orchestrator) runMessage(ctx context.Context, slot model.TimeSlot, out *Outcome, log zerolog.Logger) {
	var text string
	switch slot {
	case model.SlotHeartbeat:
		text = o.heartbeatText()
	default:
		text = testNotificationText
	}
	out.Delivery = o.Notifier.SendNotification(ctx, text, o.title(slot), slot.IsUrgent())
	out.Status = recorder.StatusMessageSent
	if !out.Delivery.Succeeded() {
		out.Status = recorder.StatusMessageFailed
		log.Error().Msg("message neither delivered nor backed up")
	}
}

func (o *Orchestrator) heartbeatText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock screener is running. %s\n\nChannels:\n", o.localNow().Format("2006-01-02 15:04:05"))
	for _, c := range o.Notifier.ChannelStatus() {
		state := "not configured"
		if c.Configured {
			state = "configured"
		}
		fmt.Fprintf(&b, "- %s: %s\n", c.Channel, state)
	}
	fmt.Fprintf(&b, "\nTiers: %d configured, minimal fallback %s", len(o.Tiers), o.Minimal.Name)
	return b.String()
}

func (o *Orchestrator) title(slot model.TimeSlot) string {
	return fmt.Sprintf("%s %s", slot.Label(), o.localNow().Format("2006-01-02"))
}

func (o *Orchestrator) localNow() time.Time {
	if o.Location == nil {
		return o.now()
	}
	return o.now().In(o.Location)
}
