package model

import "time"

// AttemptOutcome is the result of running one tier.
type AttemptOutcome string

const (
	OutcomeSuccess         AttemptOutcome = "success"
	OutcomeTimeout         AttemptOutcome = "timeout"
	OutcomeException       AttemptOutcome = "exception"
	OutcomeDataUnavailable AttemptOutcome = "data_unavailable"
)

// ExecutionAttempt records one tier run for fallback decisions and reporting.
type ExecutionAttempt struct {
	Tier      string         `json:"tier"`
	Outcome   AttemptOutcome `json:"outcome"`
	StartedAt time.Time      `json:"started_at"`
	Elapsed   time.Duration  `json:"elapsed"`
	Error     string         `json:"error,omitempty"`
}
