package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeSlot(t *testing.T) {
	for _, s := range AllSlots {
		got, err := ParseTimeSlot(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseTimeSlot("lunch_scan")
	assert.Error(t, err)
	_, err = ParseTimeSlot("")
	assert.Error(t, err)
}

func TestTimeSlotKinds(t *testing.T) {
	assert.True(t, SlotMorningScan.IsScreening())
	assert.True(t, SlotEmergencyScan.IsScreening())
	assert.False(t, SlotHeartbeat.IsScreening())
	assert.False(t, SlotTestNotification.IsScreening())
	assert.False(t, TimeSlot("bogus").IsScreening())

	assert.True(t, SlotEmergencyScan.IsUrgent())
	assert.False(t, SlotAfternoonScan.IsUrgent())

	assert.Equal(t, "Weekly summary", SlotWeeklySummary.Label())
	assert.Equal(t, "bogus", TimeSlot("bogus").Label())
}

func TestRecommendationSetTotal(t *testing.T) {
	var nilSet *RecommendationSet
	assert.Equal(t, 0, nilSet.Total())

	set := NewRecommendationSet()
	assert.NotNil(t, set.ShortTerm)
	assert.NotNil(t, set.WeakStocks)
	set.LongTerm = append(set.LongTerm, Recommendation{Code: "2330"})
	assert.Equal(t, 1, set.Total())
}
