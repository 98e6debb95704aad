// Package ratelimit implements a per-user sliding-window admission check.
// State is owned by an explicit Limiter instance shared by all workers;
// access is serialized by a mutex so concurrent deliveries for the same
// user cannot overshoot the cap.
package ratelimit

import (
	"sync"
	"time"
)

// Config holds rate limiter configuration
type Config struct {
	Limit           int
	Window          time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults: 30 messages per 300 seconds.
func DefaultConfig() Config {
	return Config{
		Limit:           30,
		Window:          300 * time.Second,
		CleanupInterval: 5 * time.Minute,
	}
}

// Limiter admits at most Limit messages per user within a trailing Window.
type Limiter struct {
	mu           sync.Mutex
	windows      map[string][]time.Time
	stopCleanup  chan struct{}
	shutdownOnce sync.Once

	limit  int
	window time.Duration

	now func() time.Time
}

// NewLimiter creates a new rate limiter and starts its cleanup goroutine.
func NewLimiter(config Config) *Limiter {
	if config.Limit <= 0 || config.Window <= 0 {
		config = DefaultConfig()
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	l := &Limiter{
		windows:     make(map[string][]time.Time),
		stopCleanup: make(chan struct{}),
		limit:       config.Limit,
		window:      config.Window,
		now:         time.Now,
	}
	go l.startCleanup(config.CleanupInterval)
	return l
}

// Allow reports whether a message from userID is admitted. Admitted
// messages are recorded; rejected ones are not, so a burst does not extend
// its own penalty. Never returns an error.
func (l *Limiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.windows[userID][:0]
	for _, t := range l.windows[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.windows[userID] = kept
		return false
	}

	l.windows[userID] = append(kept, now)
	return true
}

// ActiveUsers returns the number of users currently tracked.
func (l *Limiter) ActiveUsers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Stop gracefully shuts down the cleanup goroutine.
func (l *Limiter) Stop() {
	l.shutdownOnce.Do(func() {
		close(l.stopCleanup)
	})
}

func (l *Limiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanupStaleWindows()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanupStaleWindows drops users whose every timestamp has left the window.
func (l *Limiter) cleanupStaleWindows() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for userID, window := range l.windows {
		stale := true
		for _, t := range window {
			if t.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(l.windows, userID)
		}
	}
}
