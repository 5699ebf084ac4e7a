package model

// Escalation strategy constants.
const (
	EscalationSingleDaily       = "single-daily"
	EscalationMultipleDaily     = "multiple-daily"
	EscalationIncreasingUrgency = "increasing-urgency"
)

// NotificationConfig is the per-action reminder policy. At most one
// exists per action.
type NotificationConfig struct {
	ID       string `json:"id" db:"id"`
	ActionID string `json:"action_id" db:"action_id"`
	Enabled  bool   `json:"enabled" db:"enabled"`

	// TimeOfDay is an optional "HH:MM" preferred reminder time.
	TimeOfDay *string `json:"time_of_day,omitempty" db:"time_of_day"`

	EscalationStrategy string `json:"escalation_strategy" db:"escalation_strategy"`

	// EscalationIntervals are non-decreasing "hours past due" checkpoints.
	// Persisted as a JSON array; populated by store queries.
	EscalationIntervals []int `json:"escalation_intervals" db:"-"`
}

// ValidEscalationStrategy reports whether s is a known escalation strategy.
func ValidEscalationStrategy(s string) bool {
	switch s {
	case EscalationSingleDaily, EscalationMultipleDaily, EscalationIncreasingUrgency:
		return true
	}
	return false
}

// IntervalsNonDecreasing reports whether each interval is >= its predecessor
// and none is negative.
func IntervalsNonDecreasing(intervals []int) bool {
	prev := 0
	for i, v := range intervals {
		if v < 0 {
			return false
		}
		if i > 0 && v < prev {
			return false
		}
		prev = v
	}
	return true
}
