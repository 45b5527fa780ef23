package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
)

func TestArchive_WritesUnderDateAndSlot(t *testing.T) {
	root := t.TempDir()
	a := New(root)

	set := model.NewRecommendationSet()
	set.ShortTerm = append(set.ShortTerm, model.Recommendation{Kind: model.KindShortTerm, Code: "2330", CurrentPrice: 100, TargetPrice: 105, StopLoss: 97})
	ts := time.Date(2024, 1, 15, 9, 0, 5, 0, time.Local)

	res := &Result{
		RunID:           "abc123",
		Slot:            model.SlotMorningScan,
		Timestamp:       ts,
		Tier:            "unified",
		Attempts:        []model.ExecutionAttempt{{Tier: "unified", Outcome: model.OutcomeSuccess}},
		Recommendations: set,
		Delivery: notifier.DeliveryReport{Channels: []notifier.ChannelReport{
			{Channel: "line", Attempted: true, Delivered: true},
		}},
	}
	path, err := a.Archive(res)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2024-01-15", "morning_scan", "090005_abc123.json"), path)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "unified", got.Tier)
	require.Len(t, got.Recommendations.ShortTerm, 1)
	assert.Equal(t, "2330", got.Recommendations.ShortTerm[0].Code)
	assert.Empty(t, got.Recommendations.WeakStocks)
	assert.True(t, got.Delivery.Delivered())
}

func TestArchive_NeverOverwrites(t *testing.T) {
	a := New(t.TempDir())
	res := &Result{RunID: "same", Slot: model.SlotAfternoonScan, Timestamp: time.Now(), Recommendations: model.NewRecommendationSet()}

	_, err := a.Archive(res)
	require.NoError(t, err)
	_, err = a.Archive(res)
	assert.Error(t, err)
}
