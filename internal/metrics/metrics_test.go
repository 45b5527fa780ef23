package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
)

func TestRun_Observations(t *testing.T) {
	r := NewRun()
	r.ObserveAttempt(model.ExecutionAttempt{Tier: "unified", Outcome: model.OutcomeTimeout, Elapsed: 90 * time.Second})
	r.ObserveAttempt(model.ExecutionAttempt{Tier: "integrated", Outcome: model.OutcomeSuccess, Elapsed: time.Second})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.tierAttempts.WithLabelValues("unified", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.tierAttempts.WithLabelValues("integrated", "success")))

	r.ObserveDelivery(notifier.DeliveryReport{Channels: []notifier.ChannelReport{
		{Channel: "email"},
		{Channel: "line", Attempted: true, Delivered: true},
		{Channel: "telegram", Attempted: true, BackedUp: true},
	}})
	assert.Equal(t, 1.0, testutil.ToFloat64(r.deliveries.WithLabelValues("email", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.deliveries.WithLabelValues("line", "delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.deliveries.WithLabelValues("telegram", "backed_up")))

	set := model.NewRecommendationSet()
	set.LongTerm = append(set.LongTerm, model.Recommendation{}, model.Recommendation{})
	r.ObserveSet(set)
	assert.Equal(t, 2.0, testutil.ToFloat64(r.recommendations.WithLabelValues("long_term")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.recommendations.WithLabelValues("short_term")))
}

func TestRun_WriteTextfile(t *testing.T) {
	r := NewRun()
	r.ObserveRun(model.SlotMorningScan, "succeeded", time.Unix(1700000000, 0))

	require.NoError(t, r.WriteTextfile(""))

	path := filepath.Join(t.TempDir(), "textfile", "screener.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `screener_last_run_timestamp_seconds{slot="morning_scan",status="succeeded"}`)
}
