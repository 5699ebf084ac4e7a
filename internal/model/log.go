package model

import "time"

// Log source constants.
const (
	LogSourceUser   = "user"
	LogSourceSystem = "system"
)

// MaintenanceLog is an immutable record of one completion event.
// Only Notes may be edited after creation. Component and action
// references are advisory: history survives deletions.
type MaintenanceLog struct {
	ID          string    `json:"id" db:"id"`
	ComponentID string    `json:"component_id" db:"component_id"`
	ActionID    string    `json:"action_id" db:"action_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`

	// WasOverdue records whether this completion was late relative to
	// the due date in effect at completion time.
	WasOverdue bool `json:"was_overdue" db:"was_overdue"`

	Notes  string `json:"notes,omitempty" db:"notes"`
	Source string `json:"source" db:"source"`
}
