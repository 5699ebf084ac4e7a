package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/cpapcare/internal/model"
)

// Sentinel errors for the engine's failure taxonomy. Wrapped with %w by
// every implementation so callers can errors.Is them.
var (
	// ErrNotFound indicates the record id did not resolve. Callers must
	// treat this as stale state, never as a transient failure.
	ErrNotFound = errors.New("record not found")

	// ErrValidation indicates the write was rejected before touching
	// storage.
	ErrValidation = errors.New("validation failed")
)

// ActionFilter controls filtering for maintenance action queries.
type ActionFilter struct {
	ComponentID *string
	Unit        *string     // "days", "uses", or nil (all)
	DueBefore   *time.Time  // next_due set and <= this instant
	Initialized *bool       // next_due set (true) or unset (false)
}

// LogFilter controls filtering for maintenance log queries.
type LogFilter struct {
	ComponentID *string
	ActionID    *string
	Since       *time.Time // completed_at >= Since
	Until       *time.Time // completed_at < Until
	Limit       int
}

// Store defines the persistence contract for components, actions, logs,
// and notification configs. The scheduling engine depends only on this
// interface, not on the storage technology behind it.
type Store interface {
	// === Components ===

	CreateComponent(ctx context.Context, c model.Component) error
	UpdateComponent(ctx context.Context, c model.Component) error
	// DeleteComponent hard-deletes the component and cascades to its
	// actions, logs, and notification configs.
	DeleteComponent(ctx context.Context, id string) error
	GetComponentByID(ctx context.Context, id string) (*model.Component, error)
	GetComponents(ctx context.Context, includeInactive bool) ([]model.Component, error)
	SetComponentActive(ctx context.Context, id string, active bool) error
	// IncrementUsage adds delta to the usage counter and returns the new
	// value. The counter never goes negative.
	IncrementUsage(ctx context.Context, id string, delta int) (int, error)

	// === Maintenance actions ===

	CreateAction(ctx context.Context, a model.MaintenanceAction) error
	UpdateAction(ctx context.Context, a model.MaintenanceAction) error
	// DeleteAction cascades to the action's logs and notification config.
	DeleteAction(ctx context.Context, id string) error
	GetActionByID(ctx context.Context, id string) (*model.MaintenanceAction, error)
	GetActions(ctx context.Context, filter ActionFilter) ([]model.MaintenanceAction, error)

	// === Maintenance logs ===

	CreateLog(ctx context.Context, l model.MaintenanceLog) error
	GetLogs(ctx context.Context, filter LogFilter) ([]model.MaintenanceLog, error)
	UpdateLogNotes(ctx context.Context, id, notes string) error

	// === Notification configs ===

	UpsertNotificationConfig(ctx context.Context, c model.NotificationConfig) error
	// GetNotificationConfigByAction returns (nil, nil) when the action has
	// no config; absence is a normal state, not an error.
	GetNotificationConfigByAction(ctx context.Context, actionID string) (*model.NotificationConfig, error)
	GetNotificationConfigs(ctx context.Context) ([]model.NotificationConfig, error)
	DeleteNotificationConfigForAction(ctx context.Context, actionID string) error

	// === Combined writes ===

	// CompleteAction inserts the completion log and updates the action's
	// schedule fields in a single transaction, so a crash cannot leave a
	// log without the matching due-date advance.
	CompleteAction(ctx context.Context, l model.MaintenanceLog, a model.MaintenanceAction) error
}
