package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/cpapcare/internal/clock"
	"github.com/nhle/cpapcare/internal/model"
	"github.com/nhle/cpapcare/internal/store"
)

// Engine orchestrates the maintenance action lifecycle: initialize,
// complete, skip, snooze, reschedule, and usage-driven due marking.
// Every operation re-reads current state from the store before writing,
// so repeated invocations observe prior effects instead of double-acting.
type Engine struct {
	store store.Store
	clock clock.Clock
	log   *slog.Logger
}

// NewEngine creates an Engine over the given store and clock.
func NewEngine(s store.Store, c clock.Clock, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: s, clock: c, log: logger}
}

// CompleteResult reports the outcome of a completion.
type CompleteResult struct {
	LogID      string
	WasOverdue bool
	NextDue    time.Time
}

// Initialize sets the first due date on an action that has none.
// Idempotent: an already-initialized action is left untouched.
func (e *Engine) Initialize(ctx context.Context, actionID string) error {
	action, err := e.store.GetActionByID(ctx, actionID)
	if err != nil {
		return err
	}
	if action.NextDue != nil {
		return nil
	}

	due := InitialDueDate(action.Frequency, action.Unit, action.NotificationTime, e.clock.Now())
	action.NextDue = &due
	if err := e.store.UpdateAction(ctx, *action); err != nil {
		return err
	}

	e.log.Info("action initialized",
		"action_id", actionID, "next_due", due)
	return nil
}

// Complete records a completion and advances the schedule.
//
// The overdue flag is judged against the due date in effect at
// completedAt, and the next due date is computed from the pre-completion
// anchor rather than from completedAt, so a late completion never shifts
// the cadence. If a snooze saved the original anchor, that anchor is the
// base and is cleared. The log insert and schedule update commit in one
// store transaction.
func (e *Engine) Complete(ctx context.Context, actionID string, completedAt time.Time, notes string) (*CompleteResult, error) {
	action, err := e.store.GetActionByID(ctx, actionID)
	if err != nil {
		return nil, err
	}

	var wasOverdue bool
	var nextDue time.Time

	switch {
	case action.NextDue == nil:
		// Never initialized: treat the completion as the implicit
		// initialization point.
		nextDue = InitialDueDate(action.Frequency, action.Unit, action.NotificationTime, completedAt)
	default:
		wasOverdue = IsOverdue(*action.NextDue, completedAt)
		base := *action.NextDue
		if action.AnchorDue != nil {
			base = *action.AnchorDue
		}
		nextDue = NextDueDate(base, action.Frequency, action.Unit, completedAt)
	}

	if action.NotificationTime != nil {
		nextDue = ApplyTimeOfDay(nextDue, *action.NotificationTime)
	}

	logEntry := model.MaintenanceLog{
		ID:          uuid.New().String(),
		ComponentID: action.ComponentID,
		ActionID:    action.ID,
		CompletedAt: completedAt,
		WasOverdue:  wasOverdue,
		Notes:       notes,
		Source:      model.LogSourceUser,
	}

	action.LastCompleted = &completedAt
	action.NextDue = &nextDue
	action.AnchorDue = nil
	action.UpdatedAt = e.clock.Now().UTC()

	if err := e.store.CompleteAction(ctx, logEntry, *action); err != nil {
		return nil, err
	}

	e.log.Info("action completed",
		"action_id", actionID, "was_overdue", wasOverdue, "next_due", nextDue)

	return &CompleteResult{
		LogID:      logEntry.ID,
		WasOverdue: wasOverdue,
		NextDue:    nextDue,
	}, nil
}

// Skip advances the schedule by one cadence step without recording any
// history. Skipping never creates a log and never accumulates debt.
func (e *Engine) Skip(ctx context.Context, actionID string) error {
	action, err := e.store.GetActionByID(ctx, actionID)
	if err != nil {
		return err
	}
	if action.NextDue == nil {
		return fmt.Errorf("action %s has no due date to skip: %w", actionID, store.ErrValidation)
	}

	base := *action.NextDue
	if action.AnchorDue != nil {
		base = *action.AnchorDue
	}
	nextDue := NextDueDate(base, action.Frequency, action.Unit, e.clock.Now())
	if action.NotificationTime != nil {
		nextDue = ApplyTimeOfDay(nextDue, *action.NotificationTime)
	}

	action.NextDue = &nextDue
	action.AnchorDue = nil
	if err := e.store.UpdateAction(ctx, *action); err != nil {
		return err
	}

	e.log.Info("action skipped", "action_id", actionID, "next_due", nextDue)
	return nil
}

// Snooze pushes the due date to now + hours. The pre-snooze due date is
// preserved as the cadence anchor (first snooze only) so the original
// rhythm survives; complete and skip consume and clear it.
func (e *Engine) Snooze(ctx context.Context, actionID string, hours int) error {
	action, err := e.store.GetActionByID(ctx, actionID)
	if err != nil {
		return err
	}
	if hours <= 0 {
		return fmt.Errorf("snooze hours must be positive, got %d: %w", hours, store.ErrValidation)
	}

	if action.NextDue != nil && action.AnchorDue == nil {
		anchor := *action.NextDue
		action.AnchorDue = &anchor
	}

	snoozed := e.clock.Now().Add(time.Duration(hours) * time.Hour)
	action.NextDue = &snoozed
	if err := e.store.UpdateAction(ctx, *action); err != nil {
		return err
	}

	e.log.Info("action snoozed",
		"action_id", actionID, "hours", hours, "next_due", snoozed)
	return nil
}

// Reschedule is a direct administrative override of the due date.
func (e *Engine) Reschedule(ctx context.Context, actionID string, newDate time.Time) error {
	action, err := e.store.GetActionByID(ctx, actionID)
	if err != nil {
		return err
	}

	action.NextDue = &newDate
	action.AnchorDue = nil
	if err := e.store.UpdateAction(ctx, *action); err != nil {
		return err
	}

	e.log.Info("action rescheduled", "action_id", actionID, "next_due", newDate)
	return nil
}

// UpdateUsage increments a component's usage counter and marks any of its
// usage-based actions due once the counter reaches their frequency. This
// is the only path by which usage-based actions become due.
func (e *Engine) UpdateUsage(ctx context.Context, componentID string, increment int) (int, error) {
	count, err := e.store.IncrementUsage(ctx, componentID, increment)
	if err != nil {
		return 0, err
	}

	unit := model.UnitUses
	actions, err := e.store.GetActions(ctx, store.ActionFilter{
		ComponentID: &componentID,
		Unit:        &unit,
	})
	if err != nil {
		return count, err
	}

	now := e.clock.Now()
	for _, action := range actions {
		if count < action.Frequency {
			continue
		}
		// Already due: nothing to pull forward.
		if action.NextDue != nil && !action.NextDue.After(now) {
			continue
		}

		due := now
		action.NextDue = &due
		if err := e.store.UpdateAction(ctx, action); err != nil {
			return count, err
		}
		e.log.Info("usage threshold reached",
			"action_id", action.ID, "component_id", componentID,
			"usage_count", count, "threshold", action.Frequency)
	}

	return count, nil
}
