package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
)

// Run collects the metrics of one invocation in its own registry.
type Run struct {
	Registry        *prometheus.Registry
	tierAttempts    *prometheus.CounterVec
	tierDuration    *prometheus.HistogramVec
	deliveries      *prometheus.CounterVec
	recommendations *prometheus.GaugeVec
	lastRun         *prometheus.GaugeVec
}

func NewRun() *Run {
	r := &Run{
		Registry: prometheus.NewRegistry(),
		tierAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_tier_attempts_total",
			Help: "Tier attempts by outcome.",
		}, []string{"tier", "outcome"}),
		tierDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screener_tier_duration_seconds",
			Help:    "Wall time spent in each tier.",
			Buckets: []float64{1, 5, 15, 30, 45, 60, 90, 120},
		}, []string{"tier"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_deliveries_total",
			Help: "Notification deliveries by channel and result.",
		}, []string{"channel", "result"}),
		recommendations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "screener_recommendations",
			Help: "Recommendations produced by the last run per bucket.",
		}, []string{"bucket"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "screener_last_run_timestamp_seconds",
			Help: "Unix time of the last run per slot and status.",
		}, []string{"slot", "status"}),
	}
	r.Registry.MustRegister(r.tierAttempts, r.tierDuration, r.deliveries, r.recommendations, r.lastRun)
	return r
}

func (r *Run) ObserveAttempt(a model.ExecutionAttempt) {
	r.tierAttempts.WithLabelValues(a.Tier, string(a.Outcome)).Inc()
	r.tierDuration.WithLabelValues(a.Tier).Observe(a.Elapsed.Seconds())
}

// ObserveDelivery counts each channel as delivered, backed_up, failed or skipped.
func (r *Run) ObserveDelivery(rep notifier.DeliveryReport) {
	for _, c := range rep.Channels {
		result := "skipped"
		switch {
		case c.Delivered:
			result = "delivered"
		case c.BackedUp:
			result = "backed_up"
		case c.Attempted || c.Error != "":
			result = "failed"
		}
		r.deliveries.WithLabelValues(c.Channel, result).Inc()
	}
}

func (r *Run) ObserveSet(set *model.RecommendationSet) {
	if set == nil {
		set = model.NewRecommendationSet()
	}
	r.recommendations.WithLabelValues(string(model.KindShortTerm)).Set(float64(len(set.ShortTerm)))
	r.recommendations.WithLabelValues(string(model.KindLongTerm)).Set(float64(len(set.LongTerm)))
	r.recommendations.WithLabelValues(string(model.KindWeakAlert)).Set(float64(len(set.WeakStocks)))
}

func (r *Run) ObserveRun(slot model.TimeSlot, status string, at time.Time) {
	r.lastRun.WithLabelValues(string(slot), status).Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the node exporter textfile format.
// An empty path disables the export.
func (r *Run) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
