package notifier

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"StockScreener/internal/config"
	"StockScreener/internal/model"
)

// NotificationConfig is built once at process start and passed to the
// dispatcher. A channel whose credential set is incomplete is skipped.
type NotificationConfig struct {
	Email       config.EmailConfig
	Line        config.LineConfig
	Telegram    config.TelegramConfig
	BackupDir   string
	MaxAttempts int
	BaseDelay   time.Duration
	Proxy       string
}

// FromConfig extracts the notification settings from the application config.
func FromConfig(cfg *config.Config) NotificationConfig {
	return NotificationConfig{
		Email:       cfg.Notify.Email,
		Line:        cfg.Notify.Line,
		Telegram:    cfg.Notify.Telegram,
		BackupDir:   cfg.Notify.BackupDir,
		MaxAttempts: cfg.Notify.MaxAttempts,
		BaseDelay:   cfg.Notify.BaseDelay,
		Proxy:       cfg.Proxy,
	}
}

// Content is what gets rendered: either a recommendation set or a plain
// text notification.
type Content struct {
	Title  string
	Slot   model.TimeSlot
	Set    *model.RecommendationSet // nil for plain notifications
	Text   string
	Urgent bool
	At     time.Time
}

// Message is a channel-specific rendering of Content.
type Message struct {
	Subject string
	Body    string
	HTML    string
	Urgent  bool
}

// Channel delivers rendered messages to one destination.
type Channel interface {
	Name() string
	Configured() bool
	Render(c Content) (*Message, error)
	Send(ctx context.Context, msg *Message) error
}

// DeliveryFailure wraps a channel's final delivery error.
type DeliveryFailure struct {
	Channel string
	Err     error
}

func (e *DeliveryFailure) Error() string {
	return fmt.Sprintf("deliver via %s: %v", e.Channel, e.Err)
}

func (e *DeliveryFailure) Unwrap() error { return e.Err }

// ChannelReport is the delivery outcome for one channel.
type ChannelReport struct {
	Channel    string `json:"channel"`
	Attempted  bool   `json:"attempted"`
	Delivered  bool   `json:"delivered"`
	BackedUp   bool   `json:"backed_up"`
	BackupPath string `json:"backup_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

// DeliveryReport lists per-channel outcomes in the order attempted.
type DeliveryReport struct {
	Channels []ChannelReport `json:"channels"`
}

// Channel returns the report for name.
func (r DeliveryReport) Channel(name string) (ChannelReport, bool) {
	for _, c := range r.Channels {
		if c.Channel == name {
			return c, true
		}
	}
	return ChannelReport{}, false
}

// Delivered reports whether any channel delivered live.
func (r DeliveryReport) Delivered() bool {
	for _, c := range r.Channels {
		if c.Delivered {
			return true
		}
	}
	return false
}

// Succeeded reports whether the message was delivered or backed up somewhere.
func (r DeliveryReport) Succeeded() bool {
	for _, c := range r.Channels {
		if c.Delivered || c.BackedUp {
			return true
		}
	}
	return false
}

// LocalChannel names the backup written when no channel is configured.
const LocalChannel = "local"

// Dispatcher renders content per channel and delivers sequentially, writing
// a backup file whenever a configured channel fails.
type Dispatcher struct {
	cfg      NotificationConfig
	log      zerolog.Logger
	channels []Channel
	backup   *BackupStore
	ready    bool
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewDispatcher creates a dispatcher. Channels are built by Init.
func NewDispatcher(cfg NotificationConfig, log zerolog.Logger) *Dispatcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Dispatcher{
		cfg:    cfg,
		log:    log.With().Str("component", "notifier").Logger(),
		backup: NewBackupStore(cfg.BackupDir),
		sleep:  sleepCtx,
	}
}

// WithChannels replaces the default channel list.
func (d *Dispatcher) WithChannels(chs ...Channel) *Dispatcher {
	d.channels = chs
	return d
}

// Init resolves channels and prepares the backup directory. Calling it
// again is a no-op.
func (d *Dispatcher) Init() error {
	if d.ready {
		return nil
	}
	if d.channels == nil {
		d.channels = []Channel{
			NewEmailChannel(d.cfg.Email),
			NewLineChannel(d.cfg.Line, d.cfg.Proxy),
			NewTelegramChannel(d.cfg.Telegram, d.cfg.Proxy),
		}
	}
	if err := os.MkdirAll(d.backup.Dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	for _, ch := range d.channels {
		d.log.Info().Str("channel", ch.Name()).Bool("configured", ch.Configured()).Msg("channel status")
	}
	d.ready = true
	return nil
}

// ChannelState tells whether a channel has its full credential set.
type ChannelState struct {
	Channel    string
	Configured bool
}

// ChannelStatus reports which channels are configured, in dispatch order.
func (d *Dispatcher) ChannelStatus() []ChannelState {
	if err := d.Init(); err != nil {
		d.log.Warn().Err(err).Msg("init dispatcher")
	}
	out := make([]ChannelState, 0, len(d.channels))
	for _, ch := range d.channels {
		out = append(out, ChannelState{Channel: ch.Name(), Configured: ch.Configured()})
	}
	return out
}

// SendCombinedRecommendations delivers a recommendation set on every
// configured channel.
func (d *Dispatcher) SendCombinedRecommendations(ctx context.Context, slot model.TimeSlot, set *model.RecommendationSet, title string) DeliveryReport {
	if set == nil {
		set = model.NewRecommendationSet()
	}
	return d.dispatch(ctx, Content{Title: title, Slot: slot, Set: set, Urgent: slot.IsUrgent(), At: time.Now()})
}

// SendNotification delivers a plain text message on every configured channel.
func (d *Dispatcher) SendNotification(ctx context.Context, message, title string, urgent bool) DeliveryReport {
	return d.dispatch(ctx, Content{Title: title, Text: message, Urgent: urgent, At: time.Now()})
}

func (d *Dispatcher) dispatch(ctx context.Context, c Content) DeliveryReport {
	if err := d.Init(); err != nil {
		d.log.Error().Err(err).Msg("init dispatcher")
	}

	var report DeliveryReport
	attempted := false
	for _, ch := range d.channels {
		rep := ChannelReport{Channel: ch.Name()}
		clog := d.log.With().Str("channel", ch.Name()).Str("title", c.Title).Logger()
		if !ch.Configured() {
			clog.Debug().Msg("channel not configured, skipped")
			report.Channels = append(report.Channels, rep)
			continue
		}
		rep.Attempted = true
		attempted = true

		msg, err := ch.Render(c)
		if err == nil {
			err = d.sendWithRetry(ctx, ch, msg)
		}
		if err == nil {
			rep.Delivered = true
			clog.Info().Msg("notification delivered")
			report.Channels = append(report.Channels, rep)
			continue
		}

		failure := &DeliveryFailure{Channel: ch.Name(), Err: err}
		rep.Error = failure.Error()
		clog.Warn().Err(failure).Msg("delivery failed, writing backup")
		if msg == nil {
			msg = plainMessage(c)
		}
		if path, berr := d.backup.Write(ch.Name(), msg); berr != nil {
			clog.Error().Err(berr).Msg("backup write failed")
		} else {
			rep.BackedUp = true
			rep.BackupPath = path
		}
		report.Channels = append(report.Channels, rep)
	}

	if !attempted {
		rep := ChannelReport{Channel: LocalChannel}
		path, err := d.backup.Write(LocalChannel, plainMessage(c))
		if err != nil {
			rep.Error = err.Error()
			d.log.Error().Err(err).Msg("no channel configured and backup write failed")
		} else {
			rep.BackedUp = true
			rep.BackupPath = path
			d.log.Warn().Str("path", path).Msg("no channel configured, notification saved locally")
		}
		report.Channels = append(report.Channels, rep)
	}
	return report
}

// sendWithRetry sends a message with exponential backoff retry.
func (d *Dispatcher) sendWithRetry(ctx context.Context, ch Channel, msg *Message) error {
	var lastErr error
	backoff := d.cfg.BaseDelay
	for i := 0; i < d.cfg.MaxAttempts; i++ {
		if lastErr = ch.Send(ctx, msg); lastErr == nil {
			return nil
		}
		if i == d.cfg.MaxAttempts-1 {
			break
		}
		d.log.Warn().Err(lastErr).Str("channel", ch.Name()).
			Int("attempt", i+1).Int("max_attempts", d.cfg.MaxAttempts).
			Dur("backoff", backoff).Msg("send failed, retrying")
		if err := d.sleep(ctx, backoff); err != nil {
			return fmt.Errorf("%w (retry aborted: %v)", lastErr, err)
		}
		backoff *= 2
	}
	if d.cfg.MaxAttempts > 1 {
		return fmt.Errorf("all %d attempts failed: %w", d.cfg.MaxAttempts, lastErr)
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func plainMessage(c Content) *Message {
	return &Message{Subject: c.Title, Body: FormatText(c), Urgent: c.Urgent}
}
