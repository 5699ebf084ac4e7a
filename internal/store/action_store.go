package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/cpapcare/internal/model"
)

const actionColumns = `
	id, component_id, action_type, description,
	frequency, unit, notification_time, reminder_strategy,
	last_completed, next_due, anchor_due,
	instructions, created_at, updated_at`

// validateAction checks required fields before any write.
func validateAction(a model.MaintenanceAction) error {
	if strings.TrimSpace(a.ActionType) == "" {
		return fmt.Errorf("action type must not be empty: %w", ErrValidation)
	}
	if a.ComponentID == "" {
		return fmt.Errorf("action component id must not be empty: %w", ErrValidation)
	}
	if a.Frequency < 1 {
		return fmt.Errorf("action frequency must be >= 1, got %d: %w", a.Frequency, ErrValidation)
	}
	if !model.ValidUnit(a.Unit) {
		return fmt.Errorf("unknown schedule unit %q: %w", a.Unit, ErrValidation)
	}
	if !model.ValidReminderStrategy(a.ReminderStrategy) {
		return fmt.Errorf("unknown reminder strategy %q: %w", a.ReminderStrategy, ErrValidation)
	}
	if a.NotificationTime != nil {
		if _, _, err := model.ParseTimeOfDay(*a.NotificationTime); err != nil {
			return fmt.Errorf("%v: %w", err, ErrValidation)
		}
	}
	return nil
}

// CreateAction inserts a new maintenance action. Generates a UUID if ID is
// empty. Actions are created with next_due unset; Initialize sets it.
func (s *SQLiteStore) CreateAction(ctx context.Context, a model.MaintenanceAction) error {
	if a.ReminderStrategy == "" {
		a.ReminderStrategy = model.ReminderStandard
	}
	if err := validateAction(a); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = now
	a.LastCompleted = utcPtr(a.LastCompleted)
	a.NextDue = utcPtr(a.NextDue)
	a.AnchorDue = utcPtr(a.AnchorDue)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (`+actionColumns+`
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ComponentID, a.ActionType, a.Description,
		a.Frequency, a.Unit, a.NotificationTime, a.ReminderStrategy,
		a.LastCompleted, a.NextDue, a.AnchorDue,
		a.Instructions, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating action: %w", err)
	}
	return nil
}

// UpdateAction updates an existing action by ID.
func (s *SQLiteStore) UpdateAction(ctx context.Context, a model.MaintenanceAction) error {
	if err := validateAction(a); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()
	a.LastCompleted = utcPtr(a.LastCompleted)
	a.NextDue = utcPtr(a.NextDue)
	a.AnchorDue = utcPtr(a.AnchorDue)

	result, err := s.db.ExecContext(ctx, `
		UPDATE actions SET
			component_id = ?, action_type = ?, description = ?,
			frequency = ?, unit = ?, notification_time = ?, reminder_strategy = ?,
			last_completed = ?, next_due = ?, anchor_due = ?,
			instructions = ?, updated_at = ?
		WHERE id = ?`,
		a.ComponentID, a.ActionType, a.Description,
		a.Frequency, a.Unit, a.NotificationTime, a.ReminderStrategy,
		a.LastCompleted, a.NextDue, a.AnchorDue,
		a.Instructions, a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating action %s: %w", a.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("action %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

// DeleteAction removes an action and cascades to its logs and notification
// config.
func (s *SQLiteStore) DeleteAction(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM maintenance_logs WHERE action_id = ?", id); err != nil {
		return fmt.Errorf("deleting logs for action %s: %w", id, err)
	}

	// notification_configs cascade through the schema.
	result, err := tx.ExecContext(ctx, "DELETE FROM actions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting action %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("action %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing action delete: %w", err)
	}
	return nil
}

// GetActionByID retrieves a single action by ID.
func (s *SQLiteStore) GetActionByID(ctx context.Context, id string) (*model.MaintenanceAction, error) {
	var a model.MaintenanceAction
	err := s.db.GetContext(ctx, &a,
		"SELECT"+actionColumns+" FROM actions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("action %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting action %s: %w", id, err)
	}
	return &a, nil
}

// GetActions lists actions matching the filter, ordered by due date with
// uninitialized actions last.
func (s *SQLiteStore) GetActions(ctx context.Context, filter ActionFilter) ([]model.MaintenanceAction, error) {
	query := "SELECT" + actionColumns + " FROM actions"
	var conds []string
	var args []interface{}

	if filter.ComponentID != nil {
		conds = append(conds, "component_id = ?")
		args = append(args, *filter.ComponentID)
	}
	if filter.Unit != nil {
		conds = append(conds, "unit = ?")
		args = append(args, *filter.Unit)
	}
	if filter.DueBefore != nil {
		conds = append(conds, "next_due IS NOT NULL AND next_due <= ?")
		args = append(args, filter.DueBefore.UTC())
	}
	if filter.Initialized != nil {
		if *filter.Initialized {
			conds = append(conds, "next_due IS NOT NULL")
		} else {
			conds = append(conds, "next_due IS NULL")
		}
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY next_due IS NULL, next_due ASC, created_at ASC"

	var actions []model.MaintenanceAction
	if err := s.db.SelectContext(ctx, &actions, query, args...); err != nil {
		return nil, fmt.Errorf("listing actions: %w", err)
	}
	return actions, nil
}
