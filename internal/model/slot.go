package model

import "fmt"

// TimeSlot names a trading-session window.
type TimeSlot string

const (
	SlotMorningScan      TimeSlot = "morning_scan"
	SlotMidMorningScan   TimeSlot = "mid_morning_scan"
	SlotMidDayScan       TimeSlot = "mid_day_scan"
	SlotAfternoonScan    TimeSlot = "afternoon_scan"
	SlotWeeklySummary    TimeSlot = "weekly_summary"
	SlotHeartbeat        TimeSlot = "heartbeat"
	SlotEmergencyScan    TimeSlot = "emergency_scan"
	SlotTestNotification TimeSlot = "test_notification"
)

// AllSlots lists every accepted slot in a stable order.
var AllSlots = []TimeSlot{
	SlotMorningScan,
	SlotMidMorningScan,
	SlotMidDayScan,
	SlotAfternoonScan,
	SlotWeeklySummary,
	SlotHeartbeat,
	SlotEmergencyScan,
	SlotTestNotification,
}

var slotLabels = map[TimeSlot]string{
	SlotMorningScan:      "Morning scan",
	SlotMidMorningScan:   "Mid-morning scan",
	SlotMidDayScan:       "Mid-day scan",
	SlotAfternoonScan:    "Afternoon scan",
	SlotWeeklySummary:    "Weekly summary",
	SlotHeartbeat:        "Heartbeat",
	SlotEmergencyScan:    "Emergency scan",
	SlotTestNotification: "Test notification",
}

// ParseTimeSlot validates s against the enumerated slot set.
func ParseTimeSlot(s string) (TimeSlot, error) {
	slot := TimeSlot(s)
	if _, ok := slotLabels[slot]; !ok {
		return "", fmt.Errorf("unknown time slot %q", s)
	}
	return slot, nil
}

// Label returns a human-readable name for notifications.
func (s TimeSlot) Label() string {
	if l, ok := slotLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsScreening reports whether the slot runs the screening pipeline.
// Heartbeat and test notifications only send a message.
func (s TimeSlot) IsScreening() bool {
	switch s {
	case SlotHeartbeat, SlotTestNotification:
		return false
	}
	_, ok := slotLabels[s]
	return ok
}

// IsUrgent reports whether notifications for the slot are flagged urgent.
func (s TimeSlot) IsUrgent() bool {
	return s == SlotEmergencyScan
}
