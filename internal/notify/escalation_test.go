package notify

import (
	"testing"
	"time"

	"github.com/nhle/cpapcare/internal/model"
)

func dueItem(strategy string, hoursOverdue int, cfg *model.NotificationConfig) DueItem {
	return DueItem{
		Action: model.MaintenanceAction{
			ID:               "action-1",
			ReminderStrategy: strategy,
		},
		Config:       cfg,
		HoursOverdue: hoursOverdue,
		Overdue:      hoursOverdue > 0,
	}
}

func TestResolveEscalation(t *testing.T) {
	t.Run("defaults derive from reminder strategy", func(t *testing.T) {
		cases := []struct {
			reminder     string
			wantStrategy string
			wantLen      int
		}{
			{model.ReminderGentle, model.EscalationSingleDaily, 1},
			{model.ReminderStandard, model.EscalationMultipleDaily, 3},
			{model.ReminderUrgent, model.EscalationIncreasingUrgency, 5},
		}
		for _, tc := range cases {
			action := model.MaintenanceAction{ReminderStrategy: tc.reminder}
			strategy, intervals := ResolveEscalation(action, nil)
			if strategy != tc.wantStrategy {
				t.Errorf("%s: strategy = %s, want %s", tc.reminder, strategy, tc.wantStrategy)
			}
			if len(intervals) != tc.wantLen {
				t.Errorf("%s: interval count = %d, want %d", tc.reminder, len(intervals), tc.wantLen)
			}
		}
	})

	t.Run("config overrides action strategy", func(t *testing.T) {
		action := model.MaintenanceAction{ReminderStrategy: model.ReminderGentle}
		cfg := &model.NotificationConfig{
			EscalationStrategy:  model.EscalationMultipleDaily,
			EscalationIntervals: []int{0, 6},
		}
		strategy, intervals := ResolveEscalation(action, cfg)
		if strategy != model.EscalationMultipleDaily {
			t.Errorf("strategy = %s, want multiple-daily", strategy)
		}
		if len(intervals) != 2 || intervals[1] != 6 {
			t.Errorf("intervals = %v, want [0 6]", intervals)
		}
	})
}

func TestShouldEscalate(t *testing.T) {
	t.Run("single-daily fires only once", func(t *testing.T) {
		item := dueItem(model.ReminderGentle, 50, nil)
		if !ShouldEscalate(item, 0) {
			t.Error("first check did not fire")
		}
		for fired := 1; fired < 10; fired++ {
			if ShouldEscalate(item, fired) {
				t.Errorf("fired again at counter %d", fired)
			}
		}
	})

	t.Run("multiple-daily fires per crossed threshold in order", func(t *testing.T) {
		// Default standard intervals: 0, 4, 8 hours overdue.
		cases := []struct {
			hours, fired int
			want         bool
		}{
			{0, 0, true},
			{3, 1, false},
			{4, 1, true},
			{7, 2, false},
			{8, 2, true},
			{30, 3, false}, // intervals exhausted
		}
		for _, tc := range cases {
			item := dueItem(model.ReminderStandard, tc.hours, nil)
			if got := ShouldEscalate(item, tc.fired); got != tc.want {
				t.Errorf("hours=%d fired=%d: got %v, want %v", tc.hours, tc.fired, got, tc.want)
			}
		}
	})

	t.Run("increasing-urgency walks the fixed ladder", func(t *testing.T) {
		cases := []struct {
			hours, fired int
			want         bool
		}{
			{0, 0, true},
			{3, 1, false},
			{4, 1, true},
			{8, 2, true},
			{23, 3, false},
			{24, 3, true},
			{100, 4, false}, // never beyond counter 3
		}
		for _, tc := range cases {
			item := dueItem(model.ReminderUrgent, tc.hours, nil)
			if got := ShouldEscalate(item, tc.fired); got != tc.want {
				t.Errorf("hours=%d fired=%d: got %v, want %v", tc.hours, tc.fired, got, tc.want)
			}
		}
	})

	t.Run("config intervals drive multiple-daily", func(t *testing.T) {
		cfg := &model.NotificationConfig{
			EscalationStrategy:  model.EscalationMultipleDaily,
			EscalationIntervals: []int{2, 12},
		}
		item := dueItem(model.ReminderStandard, 1, cfg)
		if ShouldEscalate(item, 0) {
			t.Error("fired before the first configured threshold")
		}
		item.HoursOverdue = 2
		if !ShouldEscalate(item, 0) {
			t.Error("did not fire at the first configured threshold")
		}
		item.HoursOverdue = 13
		if !ShouldEscalate(item, 1) {
			t.Error("did not fire at the second configured threshold")
		}
		if ShouldEscalate(item, 2) {
			t.Error("fired past the configured intervals")
		}
	})
}

func TestCounterStore(t *testing.T) {
	noon := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)

	t.Run("records accumulate within a day", func(t *testing.T) {
		c := NewCounterStore()
		if got := c.Count("a", noon); got != 0 {
			t.Errorf("initial count = %d, want 0", got)
		}
		c.Record("a", noon)
		c.Record("a", noon.Add(4*time.Hour))
		if got := c.Count("a", noon.Add(5*time.Hour)); got != 2 {
			t.Errorf("count = %d, want 2", got)
		}
		if got := c.LastFired("a", noon.Add(5*time.Hour)); !got.Equal(noon.Add(4*time.Hour)) {
			t.Errorf("last fired = %v, want %v", got, noon.Add(4*time.Hour))
		}
	})

	t.Run("counters reset at the day boundary", func(t *testing.T) {
		c := NewCounterStore()
		c.Record("a", noon)
		c.Record("a", noon)

		nextDay := noon.AddDate(0, 0, 1)
		if got := c.Count("a", nextDay); got != 0 {
			t.Errorf("count next day = %d, want 0", got)
		}
		if got := c.LastFired("a", nextDay); !got.IsZero() {
			t.Errorf("last fired next day = %v, want zero", got)
		}
	})

	t.Run("counters are keyed per action", func(t *testing.T) {
		c := NewCounterStore()
		c.Record("a", noon)
		if got := c.Count("b", noon); got != 0 {
			t.Errorf("count for other action = %d, want 0", got)
		}
	})
}
