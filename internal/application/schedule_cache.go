package application

import (
	"strings"
	"sync"
	"time"

	"github.com/example/campus-planner/internal/availability"
)

// scheduleCache stores recently computed shared schedules to avoid repeated
// engine runs for identical group/date queries while the roster is unchanged.
type scheduleCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]scheduleCacheEntry
}

type scheduleCacheEntry struct {
	schedule  availability.SharedSchedule
	expiresAt time.Time
}

func newScheduleCache(ttl time.Duration, maxEntries int, now func() time.Time) *scheduleCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &scheduleCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]scheduleCacheEntry),
	}
}

func (c *scheduleCache) Get(key string) (availability.SharedSchedule, bool) {
	if c == nil {
		return availability.SharedSchedule{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return availability.SharedSchedule{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return availability.SharedSchedule{}, false
	}
	return entry.schedule, true
}

func (c *scheduleCache) Store(key string, schedule availability.SharedSchedule) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = scheduleCacheEntry{schedule: schedule, expiresAt: expiry}
}

// InvalidateGroup drops all cached dates for one group.
func (c *scheduleCache) InvalidateGroup(groupID string) {
	if c == nil {
		return
	}
	prefix := groupID + "|"
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func (c *scheduleCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *scheduleCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func scheduleCacheKey(groupID string, date time.Time) string {
	return groupID + "|" + date.UTC().Format(time.DateOnly)
}
