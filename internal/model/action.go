package model

import (
	"fmt"
	"time"
)

// Schedule unit constants.
const (
	UnitDays = "days"
	UnitUses = "uses"
)

// Reminder strategy constants.
const (
	ReminderGentle   = "gentle"
	ReminderStandard = "standard"
	ReminderUrgent   = "urgent"
)

// MaintenanceAction is one recurring task tied to exactly one component.
type MaintenanceAction struct {
	ID          string `json:"id" db:"id"`
	ComponentID string `json:"component_id" db:"component_id"`
	ActionType  string `json:"action_type" db:"action_type"`
	Description string `json:"description" db:"description"`

	// Frequency and Unit define the cadence: every N days, or every N uses.
	Frequency int    `json:"frequency" db:"frequency"`
	Unit      string `json:"unit" db:"unit"`

	// NotificationTime is an optional "HH:MM" time-of-day stamped onto
	// computed due dates.
	NotificationTime *string `json:"notification_time,omitempty" db:"notification_time"`

	ReminderStrategy string `json:"reminder_strategy" db:"reminder_strategy"`

	LastCompleted *time.Time `json:"last_completed,omitempty" db:"last_completed"`

	// NextDue is nil until the action is initialized.
	NextDue *time.Time `json:"next_due,omitempty" db:"next_due"`

	// AnchorDue holds the pre-snooze due date so the cadence anchor
	// survives a snooze. Cleared by complete, skip, and reschedule.
	AnchorDue *time.Time `json:"anchor_due,omitempty" db:"anchor_due"`

	Instructions string    `json:"instructions,omitempty" db:"instructions"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ValidUnit reports whether u is a known schedule unit.
func ValidUnit(u string) bool {
	return u == UnitDays || u == UnitUses
}

// ValidReminderStrategy reports whether s is a known reminder strategy.
func ValidReminderStrategy(s string) bool {
	switch s {
	case ReminderGentle, ReminderStandard, ReminderUrgent:
		return true
	}
	return false
}

// ParseTimeOfDay parses an "HH:MM" string into hour and minute. Anything
// beyond a bare 24-hour clock value is rejected.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: must be HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}
