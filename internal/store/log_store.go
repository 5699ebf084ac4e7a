package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/cpapcare/internal/model"
)

// validateLog checks required fields before any write.
func validateLog(l model.MaintenanceLog) error {
	if l.ComponentID == "" || l.ActionID == "" {
		return fmt.Errorf("log must reference a component and action: %w", ErrValidation)
	}
	if l.CompletedAt.IsZero() {
		return fmt.Errorf("log completed_at must be set: %w", ErrValidation)
	}
	if l.Source != model.LogSourceUser && l.Source != model.LogSourceSystem {
		return fmt.Errorf("unknown log source %q: %w", l.Source, ErrValidation)
	}
	return nil
}

// CreateLog inserts a completion record. Generates a UUID if ID is empty.
// Logs are immutable after creation except for note edits.
func (s *SQLiteStore) CreateLog(ctx context.Context, l model.MaintenanceLog) error {
	if l.Source == "" {
		l.Source = model.LogSourceUser
	}
	if err := validateLog(l); err != nil {
		return err
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.CompletedAt = l.CompletedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO maintenance_logs (
			id, component_id, action_id, completed_at,
			was_overdue, notes, source
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.ComponentID, l.ActionID, l.CompletedAt,
		l.WasOverdue, l.Notes, l.Source,
	)
	if err != nil {
		return fmt.Errorf("creating log: %w", err)
	}
	return nil
}

// GetLogs lists logs matching the filter, most recent first.
func (s *SQLiteStore) GetLogs(ctx context.Context, filter LogFilter) ([]model.MaintenanceLog, error) {
	query := `
		SELECT id, component_id, action_id, completed_at,
			was_overdue, notes, source
		FROM maintenance_logs`
	var conds []string
	var args []interface{}

	if filter.ComponentID != nil {
		conds = append(conds, "component_id = ?")
		args = append(args, *filter.ComponentID)
	}
	if filter.ActionID != nil {
		conds = append(conds, "action_id = ?")
		args = append(args, *filter.ActionID)
	}
	if filter.Since != nil {
		conds = append(conds, "completed_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if filter.Until != nil {
		conds = append(conds, "completed_at < ?")
		args = append(args, filter.Until.UTC())
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY completed_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var logs []model.MaintenanceLog
	if err := s.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}
	return logs, nil
}

// CompleteAction writes the completion log and the updated action schedule
// fields in a single transaction, so a crash cannot leave a log without the
// matching due-date advance.
func (s *SQLiteStore) CompleteAction(ctx context.Context, l model.MaintenanceLog, a model.MaintenanceAction) error {
	if err := validateLog(l); err != nil {
		return err
	}
	if err := validateAction(a); err != nil {
		return err
	}

	l.CompletedAt = l.CompletedAt.UTC()
	a.LastCompleted = utcPtr(a.LastCompleted)
	a.NextDue = utcPtr(a.NextDue)
	a.AnchorDue = utcPtr(a.AnchorDue)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO maintenance_logs (
			id, component_id, action_id, completed_at,
			was_overdue, notes, source
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.ComponentID, l.ActionID, l.CompletedAt,
		l.WasOverdue, l.Notes, l.Source,
	); err != nil {
		return fmt.Errorf("inserting completion log: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE actions SET
			last_completed = ?, next_due = ?, anchor_due = ?, updated_at = ?
		WHERE id = ?`,
		a.LastCompleted, a.NextDue, a.AnchorDue, a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating action %s schedule: %w", a.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("action %s: %w", a.ID, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing completion: %w", err)
	}
	return nil
}

// UpdateLogNotes edits the notes on an existing log. Notes are the only
// mutable log field.
func (s *SQLiteStore) UpdateLogNotes(ctx context.Context, id, notes string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE maintenance_logs SET notes = ? WHERE id = ?", notes, id)
	if err != nil {
		return fmt.Errorf("updating log %s notes: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("log %s: %w", id, ErrNotFound)
	}
	return nil
}
