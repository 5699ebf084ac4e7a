// Package schedule holds the due-date math and the action lifecycle
// engine. The date functions here are pure and take "now" explicitly.
package schedule

import (
	"time"

	"github.com/nhle/cpapcare/internal/model"
)

// startOfDay returns midnight of t's calendar day in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameDay reports whether a and b fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextDueDate computes the next occurrence after a completion or skip.
//
// For day-based cadences the original due date is advanced by whole
// frequency steps until it lands on a calendar day strictly after today;
// a result landing on today advances again. The next occurrence is
// therefore always originalDue + k*frequency days, never now + frequency,
// which keeps the cadence anchored to its original rhythm no matter how
// late the completion was.
//
// Usage-based cadences have no calendar signal to advance on, so the
// original due date is returned unchanged; those actions re-arm through
// usage threshold crossings instead.
func NextDueDate(originalDue time.Time, frequency int, unit string, now time.Time) time.Time {
	if unit == model.UnitUses {
		return originalDue
	}
	if frequency < 1 {
		frequency = 1
	}

	// Stored dates round-trip in UTC; day boundaries are judged in now's
	// location.
	next := originalDue.In(now.Location())
	today := startOfDay(now)
	for !startOfDay(next).After(today) {
		next = next.AddDate(0, 0, frequency)
	}
	return next
}

// InitialDueDate computes the first due date for a newly initialized
// action: now plus one frequency step, with the time-of-day overridden by
// notificationTime ("HH:MM") when present. Usage-based actions get the
// same placeholder date until their first usage evaluation.
func InitialDueDate(frequency int, unit string, notificationTime *string, now time.Time) time.Time {
	if frequency < 1 {
		frequency = 1
	}
	due := now.AddDate(0, 0, frequency)
	if notificationTime != nil {
		due = ApplyTimeOfDay(due, *notificationTime)
	}
	return due
}

// ApplyTimeOfDay stamps an "HH:MM" time onto t's calendar day. Malformed
// values leave t unchanged.
func ApplyTimeOfDay(t time.Time, timeOfDay string) time.Time {
	hour, minute, err := model.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// IsOverdue reports whether due fell before the start of today. A due
// date earlier today does not count as overdue.
func IsOverdue(due, now time.Time) bool {
	return due.Before(startOfDay(now))
}

// IsDueToday reports whether due falls within today's calendar bounds.
func IsDueToday(due, now time.Time) bool {
	return sameDay(due.In(now.Location()), now)
}

// IsUpcoming reports whether due falls after today and within the next
// withinDays days. Defined against calendar-day bounds so that for any
// due date exactly one of overdue, due-today, upcoming, or none holds.
func IsUpcoming(due, now time.Time, withinDays int) bool {
	endOfToday := startOfDay(now).AddDate(0, 0, 1)
	horizon := now.AddDate(0, 0, withinDays)
	return !due.Before(endOfToday) && due.Before(horizon)
}

// daysBetween returns b's calendar day minus a's calendar day. Computed
// over UTC midnights so DST transitions cannot skew the count.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// DaysOverdue returns the whole calendar days between due and today, or 0
// if due has not passed. Display and escalation math only; the status
// predicates are authoritative.
func DaysOverdue(due, now time.Time) int {
	days := daysBetween(due.In(now.Location()), now)
	if days < 0 {
		return 0
	}
	return days
}

// DaysUntilDue returns the whole calendar days from today until due, or 0
// if due has passed.
func DaysUntilDue(due, now time.Time) int {
	days := daysBetween(now, due.In(now.Location()))
	if days < 0 {
		return 0
	}
	return days
}

// HoursOverdue returns the whole hours now is past due, floored at 0.
func HoursOverdue(due, now time.Time) int {
	hours := int(now.Sub(due).Hours())
	if hours < 0 {
		return 0
	}
	return hours
}
