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

// validateComponent checks required fields before any write.
func validateComponent(c model.Component) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("component name must not be empty: %w", ErrValidation)
	}
	if !model.ValidCategory(c.Category) {
		return fmt.Errorf("unknown component category %q: %w", c.Category, ErrValidation)
	}
	if !model.ValidTrackingMode(c.TrackingMode) {
		return fmt.Errorf("unknown tracking mode %q: %w", c.TrackingMode, ErrValidation)
	}
	if c.UsageCount < 0 {
		return fmt.Errorf("usage count must not be negative: %w", ErrValidation)
	}
	return nil
}

// CreateComponent inserts a new component. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateComponent(ctx context.Context, c model.Component) error {
	if c.TrackingMode == "" {
		c.TrackingMode = model.TrackingCalendar
	}
	if err := validateComponent(c); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO components (
			id, name, category, tracking_mode,
			usage_count, active, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Category, c.TrackingMode,
		c.UsageCount, c.Active, c.Notes, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating component: %w", err)
	}
	return nil
}

// UpdateComponent updates an existing component by ID.
func (s *SQLiteStore) UpdateComponent(ctx context.Context, c model.Component) error {
	if err := validateComponent(c); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE components SET
			name = ?, category = ?, tracking_mode = ?,
			usage_count = ?, active = ?, notes = ?
		WHERE id = ?`,
		c.Name, c.Category, c.TrackingMode,
		c.UsageCount, c.Active, c.Notes,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating component %s: %w", c.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("component %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// DeleteComponent hard-deletes a component and cascades to its actions,
// maintenance logs, and notification configs in a single transaction.
func (s *SQLiteStore) DeleteComponent(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Logs have no foreign key, so they must be removed explicitly.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM maintenance_logs WHERE component_id = ?", id); err != nil {
		return fmt.Errorf("deleting logs for component %s: %w", id, err)
	}

	// Actions cascade to notification_configs through the schema.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM actions WHERE component_id = ?", id); err != nil {
		return fmt.Errorf("deleting actions for component %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM components WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting component %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("component %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing component delete: %w", err)
	}
	return nil
}

// GetComponentByID retrieves a single component by ID.
func (s *SQLiteStore) GetComponentByID(ctx context.Context, id string) (*model.Component, error) {
	var c model.Component
	err := s.db.GetContext(ctx, &c, `
		SELECT id, name, category, tracking_mode,
			usage_count, active, notes, created_at
		FROM components WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("component %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting component %s: %w", id, err)
	}
	return &c, nil
}

// GetComponents lists components, newest first. Inactive components are
// excluded unless includeInactive is set.
func (s *SQLiteStore) GetComponents(ctx context.Context, includeInactive bool) ([]model.Component, error) {
	query := `
		SELECT id, name, category, tracking_mode,
			usage_count, active, notes, created_at
		FROM components`
	if !includeInactive {
		query += " WHERE active = 1"
	}
	query += " ORDER BY created_at DESC"

	var components []model.Component
	if err := s.db.SelectContext(ctx, &components, query); err != nil {
		return nil, fmt.Errorf("listing components: %w", err)
	}
	return components, nil
}

// SetComponentActive toggles the soft-delete flag.
func (s *SQLiteStore) SetComponentActive(ctx context.Context, id string, active bool) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE components SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return fmt.Errorf("updating component %s active flag: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("component %s: %w", id, ErrNotFound)
	}
	return nil
}

// IncrementUsage adds delta to the usage counter and returns the new value.
// A delta that would take the counter negative is rejected.
func (s *SQLiteStore) IncrementUsage(ctx context.Context, id string, delta int) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.GetContext(ctx, &current,
		"SELECT usage_count FROM components WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("component %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("reading usage count for %s: %w", id, err)
	}

	next := current + delta
	if next < 0 {
		return 0, fmt.Errorf("usage count for %s would go negative: %w", id, ErrValidation)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE components SET usage_count = ? WHERE id = ?", next, id); err != nil {
		return 0, fmt.Errorf("updating usage count for %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing usage update: %w", err)
	}
	return next, nil
}
