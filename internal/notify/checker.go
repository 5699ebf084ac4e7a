package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nhle/cpapcare/internal/clock"
)

// defaultCheckInterval is how often the periodic checker re-evaluates
// due items when no interval is configured.
const defaultCheckInterval = 15 * time.Minute

// Checker periodically evaluates the due list and requests reminders
// through the Notifier. The caller owns the instance and its lifecycle;
// Start launches the loop and Stop halts it. A foreground-resume event
// can force an immediate check with TriggerCheck.
//
// Cycles are not mutually excluded: each one re-reads current state from
// the store and consults the counter store, so an overlapping invocation
// observes prior effects rather than double-firing.
type Checker struct {
	selector *Selector
	counters *CounterStore
	notifier Notifier
	clock    clock.Clock
	log      *slog.Logger
	interval time.Duration

	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        sync.Mutex
	running   bool
}

// NewChecker creates a Checker. interval <= 0 selects the 15-minute
// default.
func NewChecker(sel *Selector, counters *CounterStore, n Notifier, c clock.Clock, logger *slog.Logger, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		selector:  sel,
		counters:  counters,
		notifier:  n,
		clock:     c,
		log:       logger,
		interval:  interval,
		triggerCh: make(chan struct{}, 1),
	}
}

// Start launches the check loop. It runs an immediate check, then one per
// interval tick or trigger, until Stop is called. A stopped Checker can be
// started again.
func (ch *Checker) Start() {
	ch.mu.Lock()
	if ch.running {
		ch.mu.Unlock()
		return
	}
	ch.stopCh = make(chan struct{})
	ch.running = true
	stop := ch.stopCh
	ch.mu.Unlock()

	go ch.run(stop)
}

// Stop halts the check loop.
func (ch *Checker) Stop() {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if !ch.running {
		return
	}
	close(ch.stopCh)
	ch.running = false
}

// TriggerCheck requests an immediate re-evaluation, e.g. on foreground
// resume. Non-blocking; a pending trigger is not duplicated.
func (ch *Checker) TriggerCheck() {
	select {
	case ch.triggerCh <- struct{}{}:
	default:
	}
}

// run is the check loop. It watches the stop channel handed to it at
// start so a restart cannot race a stale loop.
func (ch *Checker) run(stop <-chan struct{}) {
	ticker := time.NewTicker(ch.interval)
	defer ticker.Stop()

	if err := ch.RunOnce(context.Background()); err != nil {
		ch.log.Error("due check failed", "error", err)
	}

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		case <-ch.triggerCh:
		}
		if err := ch.RunOnce(context.Background()); err != nil {
			ch.log.Error("due check failed", "error", err)
		}
	}
}

// RunOnce performs a single check-and-notify pass: build the ranked due
// list, fire whatever the escalation policy allows, and update the badge
// to the due count. Idempotent within a day for strategies whose counters
// are exhausted.
func (ch *Checker) RunOnce(ctx context.Context) error {
	now := ch.clock.Now()

	items, err := ch.selector.DueItems(ctx, now)
	if err != nil {
		return fmt.Errorf("building due list: %w", err)
	}

	for _, item := range items {
		fired := ch.counters.Count(item.Action.ID, now)
		if !ShouldEscalate(item, fired) {
			continue
		}

		req := Request{
			Title:               fmt.Sprintf("%s: %s", item.Component.Name, item.Action.ActionType),
			Body:                reminderBody(item),
			Tag:                 item.Action.ID,
			RequiresInteraction: item.Overdue,
			ActionID:            item.Action.ID,
		}
		if err := ch.notifier.Send(req); err != nil {
			ch.log.Error("notification delivery failed",
				"action_id", item.Action.ID, "error", err)
			continue
		}
		ch.counters.Record(item.Action.ID, now)
	}

	if err := ch.notifier.SetBadge(len(items)); err != nil {
		ch.log.Error("badge update failed", "error", err)
	}
	return nil
}

// reminderBody renders the notification text for a due item.
func reminderBody(item DueItem) string {
	if item.Overdue {
		if item.HoursOverdue < 48 {
			return fmt.Sprintf("Overdue by %d hours", item.HoursOverdue)
		}
		return fmt.Sprintf("Overdue by %d days", item.HoursOverdue/24)
	}
	return "Due today"
}
