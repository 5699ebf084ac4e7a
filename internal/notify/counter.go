package notify

import (
	"sync"
	"time"
)

// counterEntry tracks reminders fired for one action on one calendar day.
type counterEntry struct {
	day       string
	count     int
	lastFired time.Time
}

// CounterStore tracks "reminders fired today" per action. Entries reset
// lazily when read on a later calendar day. State is process-local and
// safe to lose: after a restart a reminder may re-fire once, which is an
// accepted redundancy.
type CounterStore struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
}

// NewCounterStore creates an empty CounterStore.
func NewCounterStore() *CounterStore {
	return &CounterStore{entries: make(map[string]*counterEntry)}
}

// dayKey identifies a local calendar day.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Count returns how many reminders have fired for the action on now's
// calendar day. A stale entry from a previous day is discarded.
func (c *CounterStore) Count(actionID string, now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[actionID]
	if !ok || entry.day != dayKey(now) {
		delete(c.entries, actionID)
		return 0
	}
	return entry.count
}

// Record increments the action's counter for now's calendar day and
// stamps the firing time.
func (c *CounterStore) Record(actionID string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[actionID]
	if !ok || entry.day != dayKey(now) {
		entry = &counterEntry{day: dayKey(now)}
		c.entries[actionID] = entry
	}
	entry.count++
	entry.lastFired = now
}

// LastFired returns when the action's reminder last fired today, or the
// zero time if it has not.
func (c *CounterStore) LastFired(actionID string, now time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[actionID]
	if !ok || entry.day != dayKey(now) {
		return time.Time{}
	}
	return entry.lastFired
}

// Reset clears all counters.
func (c *CounterStore) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*counterEntry)
}
