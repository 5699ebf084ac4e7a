package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/cpapcare/internal/model"
)

// notifConfigRow is the database shape of a NotificationConfig; the
// interval list is stored as a JSON array.
type notifConfigRow struct {
	ID                  string  `db:"id"`
	ActionID            string  `db:"action_id"`
	Enabled             bool    `db:"enabled"`
	TimeOfDay           *string `db:"time_of_day"`
	EscalationStrategy  string  `db:"escalation_strategy"`
	EscalationIntervals string  `db:"escalation_intervals"`
}

func (r notifConfigRow) toModel() (model.NotificationConfig, error) {
	c := model.NotificationConfig{
		ID:                 r.ID,
		ActionID:           r.ActionID,
		Enabled:            r.Enabled,
		TimeOfDay:          r.TimeOfDay,
		EscalationStrategy: r.EscalationStrategy,
	}
	if err := json.Unmarshal([]byte(r.EscalationIntervals), &c.EscalationIntervals); err != nil {
		return c, fmt.Errorf("parsing escalation intervals for config %s: %w", r.ID, err)
	}
	return c, nil
}

// validateNotificationConfig checks required fields before any write.
func validateNotificationConfig(c model.NotificationConfig) error {
	if c.ActionID == "" {
		return fmt.Errorf("notification config action id must not be empty: %w", ErrValidation)
	}
	if !model.ValidEscalationStrategy(c.EscalationStrategy) {
		return fmt.Errorf("unknown escalation strategy %q: %w", c.EscalationStrategy, ErrValidation)
	}
	if !model.IntervalsNonDecreasing(c.EscalationIntervals) {
		return fmt.Errorf("escalation intervals must be non-negative and non-decreasing: %w", ErrValidation)
	}
	if c.TimeOfDay != nil {
		if _, _, err := model.ParseTimeOfDay(*c.TimeOfDay); err != nil {
			return fmt.Errorf("%v: %w", err, ErrValidation)
		}
	}
	return nil
}

// UpsertNotificationConfig inserts or replaces the config for an action.
// At most one config exists per action.
func (s *SQLiteStore) UpsertNotificationConfig(ctx context.Context, c model.NotificationConfig) error {
	if err := validateNotificationConfig(c); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	intervals, err := json.Marshal(c.EscalationIntervals)
	if err != nil {
		return fmt.Errorf("encoding escalation intervals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notification_configs (
			id, action_id, enabled, time_of_day,
			escalation_strategy, escalation_intervals
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(action_id) DO UPDATE SET
			enabled = excluded.enabled,
			time_of_day = excluded.time_of_day,
			escalation_strategy = excluded.escalation_strategy,
			escalation_intervals = excluded.escalation_intervals`,
		c.ID, c.ActionID, c.Enabled, c.TimeOfDay,
		c.EscalationStrategy, string(intervals),
	)
	if err != nil {
		return fmt.Errorf("upserting notification config: %w", err)
	}
	return nil
}

// GetNotificationConfigByAction returns the config for an action, or
// (nil, nil) when none exists. Absence is a normal state.
func (s *SQLiteStore) GetNotificationConfigByAction(ctx context.Context, actionID string) (*model.NotificationConfig, error) {
	var row notifConfigRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, action_id, enabled, time_of_day,
			escalation_strategy, escalation_intervals
		FROM notification_configs WHERE action_id = ?`, actionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification config for action %s: %w", actionID, err)
	}

	c, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetNotificationConfigs lists all notification configs.
func (s *SQLiteStore) GetNotificationConfigs(ctx context.Context) ([]model.NotificationConfig, error) {
	var rows []notifConfigRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, action_id, enabled, time_of_day,
			escalation_strategy, escalation_intervals
		FROM notification_configs`)
	if err != nil {
		return nil, fmt.Errorf("listing notification configs: %w", err)
	}

	configs := make([]model.NotificationConfig, 0, len(rows))
	for _, row := range rows {
		c, err := row.toModel()
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, nil
}

// DeleteNotificationConfigForAction removes an action's config. Deleting a
// config that does not exist is not an error.
func (s *SQLiteStore) DeleteNotificationConfigForAction(ctx context.Context, actionID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notification_configs WHERE action_id = ?", actionID)
	if err != nil {
		return fmt.Errorf("deleting notification config for action %s: %w", actionID, err)
	}
	return nil
}
