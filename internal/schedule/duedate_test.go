package schedule

import (
	"testing"
	"time"

	"github.com/nhle/cpapcare/internal/model"
)

// mkTime builds a UTC instant.
func mkTime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	t.Run("weekly task completed late keeps its anchor", func(t *testing.T) {
		// Due Monday, completed Wednesday: next due is the following
		// Monday, not the following Wednesday.
		monday := mkTime(2026, time.August, 24, 8, 0)
		wednesday := mkTime(2026, time.August, 26, 10, 0)

		next := NextDueDate(monday, 7, model.UnitDays, wednesday)

		want := mkTime(2026, time.August, 31, 8, 0)
		if !next.Equal(want) {
			t.Errorf("NextDueDate() = %v, want %v", next, want)
		}
	})

	t.Run("advances by multiple steps when far behind", func(t *testing.T) {
		due := mkTime(2026, time.August, 3, 8, 0)
		now := mkTime(2026, time.August, 26, 9, 0)

		next := NextDueDate(due, 7, model.UnitDays, now)

		// 3 + 7k: first day strictly after the 26th is the 31st.
		want := mkTime(2026, time.August, 31, 8, 0)
		if !next.Equal(want) {
			t.Errorf("NextDueDate() = %v, want %v", next, want)
		}
	})

	t.Run("result landing on today advances again", func(t *testing.T) {
		due := mkTime(2026, time.August, 25, 8, 0)
		now := mkTime(2026, time.August, 26, 6, 0)

		next := NextDueDate(due, 1, model.UnitDays, now)

		// 26th is today, so the next occurrence is the 27th.
		want := mkTime(2026, time.August, 27, 8, 0)
		if !next.Equal(want) {
			t.Errorf("NextDueDate() = %v, want %v", next, want)
		}
	})

	t.Run("due date already in the future is kept", func(t *testing.T) {
		due := mkTime(2026, time.September, 4, 8, 0)
		now := mkTime(2026, time.August, 26, 9, 0)

		next := NextDueDate(due, 7, model.UnitDays, now)
		if !next.Equal(due) {
			t.Errorf("NextDueDate() = %v, want unchanged %v", next, due)
		}
	})

	t.Run("usage unit returns original due unchanged", func(t *testing.T) {
		due := mkTime(2026, time.July, 1, 8, 0)
		now := mkTime(2026, time.August, 26, 9, 0)

		next := NextDueDate(due, 30, model.UnitUses, now)
		if !next.Equal(due) {
			t.Errorf("NextDueDate() = %v, want unchanged %v", next, due)
		}
	})

	t.Run("drift prevention holds for arbitrary offsets", func(t *testing.T) {
		origin := mkTime(2026, time.January, 5, 9, 30)
		for _, freq := range []int{1, 3, 7, 30} {
			for lateDays := 0; lateDays < 100; lateDays++ {
				now := origin.AddDate(0, 0, lateDays).Add(2 * time.Hour)
				next := NextDueDate(origin, freq, model.UnitDays, now)

				// Result must be origin + k*freq for some k.
				diff := int(next.Sub(origin).Hours() / 24)
				if diff%freq != 0 {
					t.Fatalf("freq=%d late=%d: %v is not on the cadence grid", freq, lateDays, next)
				}
				// Result must land on a day strictly after today.
				if !startOfDay(next).After(startOfDay(now)) {
					t.Fatalf("freq=%d late=%d: %v not after today %v", freq, lateDays, next, now)
				}
				// k must be minimal: one step earlier must not clear today.
				prev := next.AddDate(0, 0, -freq)
				if startOfDay(prev).After(startOfDay(now)) {
					t.Fatalf("freq=%d late=%d: %v overshoots, %v also clears today", freq, lateDays, next, prev)
				}
			}
		}
	})
}

func TestInitialDueDate(t *testing.T) {
	now := mkTime(2026, time.August, 26, 14, 45)

	t.Run("adds frequency days", func(t *testing.T) {
		due := InitialDueDate(3, model.UnitDays, nil, now)
		want := mkTime(2026, time.August, 29, 14, 45)
		if !due.Equal(want) {
			t.Errorf("InitialDueDate() = %v, want %v", due, want)
		}
	})

	t.Run("notification time overrides time of day", func(t *testing.T) {
		at := "08:30"
		due := InitialDueDate(3, model.UnitDays, &at, now)
		want := mkTime(2026, time.August, 29, 8, 30)
		if !due.Equal(want) {
			t.Errorf("InitialDueDate() = %v, want %v", due, want)
		}
	})

	t.Run("usage unit gets the same placeholder", func(t *testing.T) {
		due := InitialDueDate(30, model.UnitUses, nil, now)
		want := now.AddDate(0, 0, 30)
		if !due.Equal(want) {
			t.Errorf("InitialDueDate() = %v, want %v", due, want)
		}
	})
}

func TestStatusPredicates(t *testing.T) {
	now := mkTime(2026, time.August, 26, 12, 0)

	cases := []struct {
		name     string
		due      time.Time
		overdue  bool
		today    bool
		upcoming bool
	}{
		{"yesterday", mkTime(2026, time.August, 25, 23, 59), true, false, false},
		{"last week", mkTime(2026, time.August, 19, 8, 0), true, false, false},
		{"earlier today", mkTime(2026, time.August, 26, 8, 0), false, true, false},
		{"later today", mkTime(2026, time.August, 26, 22, 0), false, true, false},
		{"tomorrow", mkTime(2026, time.August, 27, 8, 0), false, false, true},
		{"in six days", mkTime(2026, time.September, 1, 8, 0), false, false, true},
		{"in eight days", mkTime(2026, time.September, 3, 8, 0), false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOverdue(tc.due, now); got != tc.overdue {
				t.Errorf("IsOverdue() = %v, want %v", got, tc.overdue)
			}
			if got := IsDueToday(tc.due, now); got != tc.today {
				t.Errorf("IsDueToday() = %v, want %v", got, tc.today)
			}
			if got := IsUpcoming(tc.due, now, 7); got != tc.upcoming {
				t.Errorf("IsUpcoming() = %v, want %v", got, tc.upcoming)
			}
		})
	}

	t.Run("exactly one status holds over a wide range", func(t *testing.T) {
		for hours := -24 * 30; hours <= 24*30; hours++ {
			due := now.Add(time.Duration(hours) * time.Hour)
			count := 0
			if IsOverdue(due, now) {
				count++
			}
			if IsDueToday(due, now) {
				count++
			}
			if IsUpcoming(due, now, 7) {
				count++
			}
			if count > 1 {
				t.Fatalf("due %v: %d statuses hold simultaneously", due, count)
			}
		}
	})
}

func TestDayAndHourDeltas(t *testing.T) {
	now := mkTime(2026, time.August, 26, 12, 0)

	t.Run("days overdue", func(t *testing.T) {
		if got := DaysOverdue(mkTime(2026, time.August, 23, 8, 0), now); got != 3 {
			t.Errorf("DaysOverdue() = %d, want 3", got)
		}
		if got := DaysOverdue(mkTime(2026, time.August, 28, 8, 0), now); got != 0 {
			t.Errorf("DaysOverdue() future = %d, want 0", got)
		}
	})

	t.Run("days until due", func(t *testing.T) {
		if got := DaysUntilDue(mkTime(2026, time.August, 29, 8, 0), now); got != 3 {
			t.Errorf("DaysUntilDue() = %d, want 3", got)
		}
		if got := DaysUntilDue(mkTime(2026, time.August, 20, 8, 0), now); got != 0 {
			t.Errorf("DaysUntilDue() past = %d, want 0", got)
		}
	})

	t.Run("hours overdue floors at zero", func(t *testing.T) {
		if got := HoursOverdue(now.Add(-90*time.Minute), now); got != 1 {
			t.Errorf("HoursOverdue() = %d, want 1", got)
		}
		if got := HoursOverdue(now.Add(time.Hour), now); got != 0 {
			t.Errorf("HoursOverdue() future = %d, want 0", got)
		}
	})
}
