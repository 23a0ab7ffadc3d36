// Package flood limits how many track requests a chat member may send per minute.
package flood

import (
	"sync"
	"time"
)

const (
	// windowDuration is the sliding window for flood detection
	windowDuration = 60 * time.Second
	// cleanupInterval is how often idle entries are purged
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long an entry may stay unused before it is purged
	idleTimeout = 10 * time.Minute
)

// key identifies a member of a chat
type key struct {
	chatID int64
	userID int64
}

// userEntry tracks request timestamps of one member in one chat
type userEntry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// Floodgate is a per chat, per user sliding window limiter.
// A limit of zero or less disables limiting.
type Floodgate struct {
	limitPerMinute int
	entries        map[key]*userEntry
	mutex          sync.Mutex
	now            func() time.Time
	stopCleanup    chan struct{}
	stopOnce       sync.Once
}

// New creates a Floodgate and starts its background cleanup.
func New(limitPerMinute int) *Floodgate {
	fg := newFloodgate(limitPerMinute, time.Now)
	go fg.cleanup()
	return fg
}

func newFloodgate(limitPerMinute int, now func() time.Time) *Floodgate {
	return &Floodgate{
		limitPerMinute: limitPerMinute,
		entries:        make(map[key]*userEntry),
		now:            now,
		stopCleanup:    make(chan struct{}),
	}
}

// Stop ends the background cleanup. It is safe to call more than once.
func (fg *Floodgate) Stop() {
	fg.stopOnce.Do(func() {
		close(fg.stopCleanup)
	})
}

// CheckMessage records a request and reports whether it is within the limit.
func (fg *Floodgate) CheckMessage(chatID, userID int64) bool {
	if fg.limitPerMinute <= 0 {
		return true
	}

	k := key{chatID: chatID, userID: userID}
	now := fg.now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.entries[k]
	if !exists {
		entry = &userEntry{
			timestamps: make([]time.Time, 0, fg.limitPerMinute+1),
		}
		fg.entries[k] = entry
	}
	entry.lastSeen = now

	windowStart := now.Add(-windowDuration)
	valid := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	entry.timestamps = valid

	if len(entry.timestamps) >= fg.limitPerMinute {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

// Limit returns the configured requests per minute.
func (fg *Floodgate) Limit() int {
	return fg.limitPerMinute
}

func (fg *Floodgate) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fg.performCleanup()
		case <-fg.stopCleanup:
			return
		}
	}
}

// performCleanup removes entries that have been idle for too long
func (fg *Floodgate) performCleanup() {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	cutoff := fg.now().Add(-idleTimeout)
	for k, entry := range fg.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(fg.entries, k)
		}
	}
}

// GetStats returns statistics about the floodgate for monitoring/debugging
func (fg *Floodgate) GetStats() Stats {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	return Stats{
		ActiveUsers:    len(fg.entries),
		LimitPerMinute: fg.limitPerMinute,
		WindowSeconds:  int(windowDuration.Seconds()),
	}
}

// Stats contains floodgate statistics
type Stats struct {
	ActiveUsers    int `json:"active_users"`
	LimitPerMinute int `json:"limit_per_minute"`
	WindowSeconds  int `json:"window_seconds"`
}
