package entity

import "time"

// HistoryEntry is an immutable audit record of one approve/reject action.
// StepID always references the step the action was taken on, not the step
// transitioned to. Instance creation is not recorded.
type HistoryEntry struct {
	ID         string    `json:"id"`
	InstanceID string    `json:"instance_id"`
	StepID     string    `json:"step_id"`
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	Comment    string    `json:"comment,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// HistoryRecord is a history entry with the acting user resolved for display
type HistoryRecord struct {
	HistoryEntry

	User *User `json:"user,omitempty"`
}
