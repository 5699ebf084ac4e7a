// Package app is the wiring layer between the CLI and the scheduling
// core: it constructs the store, engine, selector, and analytics service
// from configuration and manages their lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/cpapcare/internal/analytics"
	"github.com/nhle/cpapcare/internal/clock"
	"github.com/nhle/cpapcare/internal/model"
	"github.com/nhle/cpapcare/internal/notify"
	"github.com/nhle/cpapcare/internal/schedule"
	"github.com/nhle/cpapcare/internal/store"
)

// App bundles the wired core services. The caller must Close it.
type App struct {
	Config    *model.AppConfig
	Store     *store.SQLiteStore
	Clock     clock.Clock
	Engine    *schedule.Engine
	Selector  *notify.Selector
	Analytics *analytics.Service
	Counters  *notify.CounterStore
	Notifier  notify.Notifier
	Log       *slog.Logger
}

// New loads configuration from cfgPath (the default path when empty),
// opens the store, and wires the core services.
func New(cfgPath string) (*App, error) {
	if cfgPath == "" {
		cfgPath = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
		}
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	clk := clock.Real{}

	a := &App{
		Config:    cfg,
		Store:     st,
		Clock:     clk,
		Engine:    schedule.NewEngine(st, clk, logger),
		Selector:  notify.NewSelector(st),
		Analytics: analytics.NewService(st, clk),
		Counters:  notify.NewCounterStore(),
		Notifier:  notify.NewLogNotifier(logger),
		Log:       logger,
	}
	return a, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// NewChecker builds the periodic due-item checker from the configured
// interval. The caller owns its lifecycle.
func (a *App) NewChecker() *notify.Checker {
	interval := time.Duration(a.Config.Check.IntervalMinutes) * time.Minute
	return notify.NewChecker(a.Selector, a.Counters, a.Notifier, a.Clock, a.Log, interval)
}

// AddAction creates a maintenance action together with its default
// notification config derived from the reminder strategy. Returns the
// action id.
func (a *App) AddAction(ctx context.Context, action model.MaintenanceAction) (string, error) {
	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	if err := a.Store.CreateAction(ctx, action); err != nil {
		return "", err
	}

	strategy, intervals := notify.ResolveEscalation(action, nil)
	cfg := model.NotificationConfig{
		ActionID:            action.ID,
		Enabled:             true,
		TimeOfDay:           action.NotificationTime,
		EscalationStrategy:  strategy,
		EscalationIntervals: intervals,
	}
	if err := a.Store.UpsertNotificationConfig(ctx, cfg); err != nil {
		return "", err
	}
	return action.ID, nil
}

// AddComponent creates a component and returns its id.
func (a *App) AddComponent(ctx context.Context, c model.Component) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.Active = true
	if err := a.Store.CreateComponent(ctx, c); err != nil {
		return "", err
	}
	return c.ID, nil
}
