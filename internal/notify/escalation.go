package notify

import "github.com/nhle/cpapcare/internal/model"

// Default interval lists derived from an action's reminder strategy when
// no NotificationConfig exists.
var defaultIntervals = map[string][]int{
	model.ReminderGentle:   {0},
	model.ReminderStandard: {0, 4, 8},
	model.ReminderUrgent:   {0, 2, 4, 8, 12},
}

// increasingUrgencyLadder is the fixed four-step overdue-hour schedule
// for the increasing-urgency strategy.
var increasingUrgencyLadder = []int{0, 4, 8, 24}

// ResolveEscalation returns the effective strategy and interval list for
// a due item: the notification config wins, otherwise defaults derive
// from the action's reminder strategy (gentle -> single-daily, standard
// -> multiple-daily, urgent -> increasing-urgency).
func ResolveEscalation(action model.MaintenanceAction, cfg *model.NotificationConfig) (string, []int) {
	if cfg != nil && cfg.EscalationStrategy != "" {
		intervals := cfg.EscalationIntervals
		if len(intervals) == 0 {
			intervals = []int{0}
		}
		return cfg.EscalationStrategy, intervals
	}

	switch action.ReminderStrategy {
	case model.ReminderGentle:
		return model.EscalationSingleDaily, defaultIntervals[model.ReminderGentle]
	case model.ReminderUrgent:
		return model.EscalationIncreasingUrgency, defaultIntervals[model.ReminderUrgent]
	default:
		return model.EscalationMultipleDaily, defaultIntervals[model.ReminderStandard]
	}
}

// ShouldEscalate decides whether another reminder fires for a due item,
// given how many reminders already fired for it today.
//
// single-daily fires only on the first check of the day. multiple-daily
// fires once per crossed interval threshold, in order. increasing-urgency
// walks a fixed 0/4/8/24-hour ladder and never fires more than four times
// per day.
func ShouldEscalate(item DueItem, firedToday int) bool {
	strategy, intervals := ResolveEscalation(item.Action, item.Config)

	switch strategy {
	case model.EscalationSingleDaily:
		return firedToday == 0

	case model.EscalationMultipleDaily:
		if firedToday >= len(intervals) {
			return false
		}
		return item.HoursOverdue >= intervals[firedToday]

	case model.EscalationIncreasingUrgency:
		if firedToday >= len(increasingUrgencyLadder) {
			return false
		}
		return item.HoursOverdue >= increasingUrgencyLadder[firedToday]

	default:
		return false
	}
}
