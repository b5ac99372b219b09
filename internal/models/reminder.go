package models

import "github.com/google/uuid"

type ReminderType string

const (
	ReminderTypeUpcoming ReminderType = "upcoming"
	ReminderTypeOverdue  ReminderType = "overdue"
)

type ReminderOutcome string

const (
	ReminderSent   ReminderOutcome = "sent"
	ReminderFailed ReminderOutcome = "failed"
)

// ReminderDetail records what happened to one invoice during a run.
type ReminderDetail struct {
	ID     uuid.UUID       `json:"id"`
	Status ReminderOutcome `json:"status"`
	Type   ReminderType    `json:"type"`
}

// ReminderRunResult summarises one dispatch run. Processed counts successful
// sends and Attempted counts every eligible invoice.
type ReminderRunResult struct {
	Processed      int              `json:"processed"`
	Attempted      int              `json:"attempted"`
	SkippedNoPhone int              `json:"skippedNoPhone"`
	Details        []ReminderDetail `json:"details"`
}
