package commands

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"StockScreener/internal/pipeline"
)

func TestWithCode(t *testing.T) {
	assert.NoError(t, withCode(ExitUsage, nil))

	err := withCode(ExitExhausted, pipeline.ErrAllTiersExhausted)
	var ee *exitError
	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, ExitExhausted, ee.code)
	assert.ErrorIs(t, err, pipeline.ErrAllTiersExhausted)
}

func TestRunSlots_ListsEverySlot(t *testing.T) {
	var buf bytes.Buffer
	slotsCmd.SetOut(&buf)
	configFile = "does-not-exist.yaml"

	assert.NoError(t, runSlots(slotsCmd, nil))
	out := buf.String()
	assert.Contains(t, out, "morning_scan")
	assert.Contains(t, out, "emergency_scan")
	assert.Contains(t, out, "screening (urgent)")
	assert.Contains(t, out, "test_notification")
	assert.Contains(t, out, "0 0 9 * * 1-5")
}

func TestRunSlot_UnknownSlotIsUsageError(t *testing.T) {
	err := runSlot(runCmd, []string{"lunch_scan"})
	var ee *exitError
	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, ExitUsage, ee.code)
}
