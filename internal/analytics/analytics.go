// Package analytics computes streak and compliance figures from the
// maintenance history.
package analytics

import (
	"context"
	"math"
	"time"

	"github.com/nhle/cpapcare/internal/clock"
	"github.com/nhle/cpapcare/internal/model"
	"github.com/nhle/cpapcare/internal/store"
)

// DefaultLookbackDays bounds the streak walk and the default compliance
// window.
const DefaultLookbackDays = 365

// Service computes analytics over logs and actions.
type Service struct {
	store store.Store
	clock clock.Clock
}

// NewService creates an analytics Service.
func NewService(s store.Store, c clock.Clock) *Service {
	return &Service{store: s, clock: c}
}

// dayKey identifies a local calendar day.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// calendarActions returns the day-unit actions belonging to active
// components. Usage-based actions carry no calendar signal and are
// excluded from streak and required-count math.
func (s *Service) calendarActions(ctx context.Context) ([]model.MaintenanceAction, error) {
	unit := model.UnitDays
	actions, err := s.store.GetActions(ctx, store.ActionFilter{Unit: &unit})
	if err != nil {
		return nil, err
	}

	components, err := s.store.GetComponents(ctx, false)
	if err != nil {
		return nil, err
	}
	active := make(map[string]bool, len(components))
	for _, c := range components {
		active[c.ID] = true
	}

	var out []model.MaintenanceAction
	for _, a := range actions {
		if active[a.ComponentID] {
			out = append(out, a)
		}
	}
	return out, nil
}

// scheduledByDay projects each action's cadence backward and forward from
// its current due date at frequency-day steps across the lookback window,
// producing the set of action ids scheduled on each day. Stored dates
// round-trip in UTC; days are bucketed in loc, the clock's location.
func scheduledByDay(actions []model.MaintenanceAction, windowStart, windowEnd time.Time, loc *time.Location) map[string][]string {
	scheduled := make(map[string][]string)
	for _, a := range actions {
		if a.NextDue == nil || a.Frequency < 1 {
			continue
		}

		// Walk back to the first occurrence at or before windowStart.
		occ := a.NextDue.In(loc)
		for occ.After(windowStart) {
			occ = occ.AddDate(0, 0, -a.Frequency)
		}
		// Then forward across the window.
		for ; !occ.After(windowEnd); occ = occ.AddDate(0, 0, a.Frequency) {
			if occ.Before(windowStart) {
				continue
			}
			key := dayKey(occ)
			scheduled[key] = append(scheduled[key], a.ID)
		}
	}
	return scheduled
}

// Streak counts consecutive calendar days, walking backward from today,
// on which every scheduled action was completed. Days with nothing
// scheduled neither extend nor break the run; the walk stops at the
// first day with a required-but-incomplete action.
func (s *Service) Streak(ctx context.Context) (int, error) {
	now := s.clock.Now()
	windowEnd := now
	windowStart := now.AddDate(0, 0, -DefaultLookbackDays)

	actions, err := s.calendarActions(ctx)
	if err != nil {
		return 0, err
	}
	scheduled := scheduledByDay(actions, windowStart, windowEnd, now.Location())

	logs, err := s.store.GetLogs(ctx, store.LogFilter{Since: &windowStart})
	if err != nil {
		return 0, err
	}
	completed := make(map[string]map[string]bool)
	for _, l := range logs {
		key := dayKey(l.CompletedAt.In(now.Location()))
		if completed[key] == nil {
			completed[key] = make(map[string]bool)
		}
		completed[key][l.ActionID] = true
	}

	streak := 0
	for offset := 0; offset <= DefaultLookbackDays; offset++ {
		day := now.AddDate(0, 0, -offset)
		key := dayKey(day)

		required := scheduled[key]
		if len(required) == 0 {
			continue
		}

		done := completed[key]
		allDone := true
		for _, actionID := range required {
			if !done[actionID] {
				allDone = false
				break
			}
		}
		if !allDone {
			break
		}
		streak++
	}
	return streak, nil
}

// Compliance returns the completed-vs-required percentage over a trailing
// window of windowDays days. Required is the sum over calendar actions of
// max(1, windowDays/frequency); completed is the number of logs in the
// window. The result is rounded, capped at 100, and defaults to 100 when
// nothing was required.
func (s *Service) Compliance(ctx context.Context, windowDays int) (int, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	now := s.clock.Now()
	windowStart := now.AddDate(0, 0, -windowDays)

	actions, err := s.calendarActions(ctx)
	if err != nil {
		return 0, err
	}

	required := 0
	for _, a := range actions {
		per := windowDays / a.Frequency
		if per < 1 {
			per = 1
		}
		required += per
	}
	if required == 0 {
		return 100, nil
	}

	logs, err := s.store.GetLogs(ctx, store.LogFilter{Since: &windowStart})
	if err != nil {
		return 0, err
	}

	pct := int(math.Round(100 * float64(len(logs)) / float64(required)))
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}
