// internal/daily/daily.go
//
// Daily puzzle numbering. Every language runs its own sequence that started on
// a fixed date; today's puzzle id is the number of whole days since then.
package daily

import (
	"sync"
	"time"

	"github.com/robalobadob/guesstheword/internal/game"
)

// startDates are the first puzzle day of each language (UTC).
var startDates = map[game.Language]time.Time{
	game.Portuguese: time.Date(2022, 2, 23, 0, 0, 0, 0, time.UTC),
	game.English:    time.Date(2022, 9, 18, 0, 0, 0, 0, time.UTC),
	game.Spanish:    time.Date(2023, 5, 26, 0, 0, 0, 0, time.UTC),
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// GameID returns the puzzle id for lang on the day of t.
// Unknown languages and days before the start date yield 1.
func GameID(lang game.Language, t time.Time) int {
	start, ok := startDates[lang]
	if !ok {
		return 1
	}
	day := t.UTC().Truncate(24 * time.Hour)
	days := int(day.Sub(start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Calendar caches today's puzzle ids. Refresh is driven by the scheduler at
// midnight UTC; Today recomputes on its own if the cached day is stale.
type Calendar struct {
	mu  sync.RWMutex
	now func() time.Time
	day string
	ids map[game.Language]int
}

// NewCalendar returns a calendar reading the given clock (time.Now when nil).
func NewCalendar(now func() time.Time) *Calendar {
	if now == nil {
		now = time.Now
	}
	c := &Calendar{now: now}
	c.Refresh()
	return c
}

// Refresh recomputes the ids for the current day and reports whether the day changed.
func (c *Calendar) Refresh() bool {
	now := c.now()
	ids := make(map[game.Language]int, len(startDates))
	for _, lang := range game.Languages {
		ids[lang] = GameID(lang, now)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	changed := c.day != DateKey(now)
	c.day = DateKey(now)
	c.ids = ids
	return changed
}

// Today returns today's puzzle id for lang.
func (c *Calendar) Today(lang game.Language) int {
	c.mu.RLock()
	stale := c.day != DateKey(c.now())
	id, ok := c.ids[lang]
	c.mu.RUnlock()

	if stale {
		c.Refresh()
		return GameID(lang, c.now())
	}
	if !ok {
		return GameID(lang, c.now())
	}
	return id
}

// Snapshot returns the cached day key and a copy of the ids.
func (c *Calendar) Snapshot() (string, map[game.Language]int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[game.Language]int, len(c.ids))
	for k, v := range c.ids {
		out[k] = v
	}
	return c.day, out
}
