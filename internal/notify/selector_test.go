package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/cpapcare/internal/model"
	"github.com/nhle/cpapcare/internal/notify"
	"github.com/nhle/cpapcare/internal/store"
	"github.com/nhle/cpapcare/tests/testutil"
)

// seedComponent inserts an active component.
func seedComponent(t *testing.T, s *store.SQLiteStore, id, name string) {
	t.Helper()
	err := s.CreateComponent(context.Background(), model.Component{
		ID:           id,
		Name:         name,
		Category:     model.CategoryFilter,
		TrackingMode: model.TrackingCalendar,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("creating component %s: %v", id, err)
	}
}

// seedDueAction inserts an action with the given due date.
func seedDueAction(t *testing.T, s *store.SQLiteStore, id, componentID string, due time.Time) {
	t.Helper()
	err := s.CreateAction(context.Background(), model.MaintenanceAction{
		ID:          id,
		ComponentID: componentID,
		ActionType:  "Clean",
		Frequency:   1,
		Unit:        model.UnitDays,
		NextDue:     &due,
	})
	if err != nil {
		t.Fatalf("creating action %s: %v", id, err)
	}
}

func TestSelector_DueItems(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)

	t.Run("ranks overdue before due-today, most overdue first", func(t *testing.T) {
		s := testutil.NewTestStore(t)
		seedComponent(t, s, "comp-1", "Tubing")

		seedDueAction(t, s, "due-today", "comp-1", now.Add(-2*time.Hour))
		seedDueAction(t, s, "overdue-small", "comp-1", now.AddDate(0, 0, -1))
		seedDueAction(t, s, "overdue-big", "comp-1", now.AddDate(0, 0, -5))
		seedDueAction(t, s, "future", "comp-1", now.AddDate(0, 0, 3))

		items, err := notify.NewSelector(s).DueItems(ctx, now)
		if err != nil {
			t.Fatalf("DueItems() error = %v", err)
		}

		var ids []string
		for _, item := range items {
			ids = append(ids, item.Action.ID)
		}
		want := []string{"overdue-big", "overdue-small", "due-today"}
		if len(ids) != len(want) {
			t.Fatalf("due items = %v, want %v", ids, want)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Fatalf("due items = %v, want %v", ids, want)
			}
		}

		if !items[0].Overdue || items[0].HoursOverdue != 120 {
			t.Errorf("most overdue item: overdue=%v hours=%d, want true/120",
				items[0].Overdue, items[0].HoursOverdue)
		}
		if items[2].Overdue || items[2].HoursOverdue != 2 {
			t.Errorf("due-today item: overdue=%v hours=%d, want false/2",
				items[2].Overdue, items[2].HoursOverdue)
		}
	})

	t.Run("equal overdue hours break ties on earlier due date", func(t *testing.T) {
		s := testutil.NewTestStore(t)
		seedComponent(t, s, "comp-1", "Tubing")

		// Both under an hour past due: whole-hours overdue is 0 for each.
		seedDueAction(t, s, "later", "comp-1", now.Add(-30*time.Minute))
		seedDueAction(t, s, "earlier", "comp-1", now.Add(-50*time.Minute))

		items, err := notify.NewSelector(s).DueItems(ctx, now)
		if err != nil {
			t.Fatalf("DueItems() error = %v", err)
		}
		if len(items) != 2 || items[0].Action.ID != "earlier" {
			t.Errorf("tie-break order wrong: %v", items)
		}
	})

	t.Run("inactive components are excluded", func(t *testing.T) {
		s := testutil.NewTestStore(t)
		seedComponent(t, s, "comp-1", "Tubing")
		seedDueAction(t, s, "action-1", "comp-1", now.AddDate(0, 0, -1))
		if err := s.SetComponentActive(ctx, "comp-1", false); err != nil {
			t.Fatalf("SetComponentActive() error = %v", err)
		}

		items, err := notify.NewSelector(s).DueItems(ctx, now)
		if err != nil {
			t.Fatalf("DueItems() error = %v", err)
		}
		if len(items) != 0 {
			t.Errorf("due items = %d, want 0", len(items))
		}
	})

	t.Run("disabled configs silence their actions", func(t *testing.T) {
		s := testutil.NewTestStore(t)
		seedComponent(t, s, "comp-1", "Tubing")
		seedDueAction(t, s, "silenced", "comp-1", now.AddDate(0, 0, -1))
		seedDueAction(t, s, "audible", "comp-1", now.AddDate(0, 0, -1))

		err := s.UpsertNotificationConfig(ctx, model.NotificationConfig{
			ActionID:            "silenced",
			Enabled:             false,
			EscalationStrategy:  model.EscalationSingleDaily,
			EscalationIntervals: []int{0},
		})
		if err != nil {
			t.Fatalf("UpsertNotificationConfig() error = %v", err)
		}

		items, err := notify.NewSelector(s).DueItems(ctx, now)
		if err != nil {
			t.Fatalf("DueItems() error = %v", err)
		}
		if len(items) != 1 || items[0].Action.ID != "audible" {
			t.Errorf("due items = %v, want only audible", items)
		}
	})

	t.Run("enabled config is attached to its item", func(t *testing.T) {
		s := testutil.NewTestStore(t)
		seedComponent(t, s, "comp-1", "Tubing")
		seedDueAction(t, s, "action-1", "comp-1", now.AddDate(0, 0, -1))

		err := s.UpsertNotificationConfig(ctx, model.NotificationConfig{
			ActionID:            "action-1",
			Enabled:             true,
			EscalationStrategy:  model.EscalationIncreasingUrgency,
			EscalationIntervals: []int{0, 2, 4, 8, 12},
		})
		if err != nil {
			t.Fatalf("UpsertNotificationConfig() error = %v", err)
		}

		items, err := notify.NewSelector(s).DueItems(ctx, now)
		if err != nil {
			t.Fatalf("DueItems() error = %v", err)
		}
		if len(items) != 1 || items[0].Config == nil {
			t.Fatalf("expected one item with config, got %v", items)
		}
		if items[0].Config.EscalationStrategy != model.EscalationIncreasingUrgency {
			t.Errorf("config strategy = %s", items[0].Config.EscalationStrategy)
		}
	})
}
