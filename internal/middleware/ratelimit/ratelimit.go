// Package ratelimit implements a per-client fixed-window request limiter
// for the mutating API endpoints.
package ratelimit

import (
	"sync"
	"time"
)

// Config holds rate limiter configuration.
type Config struct {
	RequestsPerWindow int
	Window            time.Duration
	CleanupInterval   time.Duration
}

// DefaultConfig allows 60 mutating requests per minute per client.
func DefaultConfig() Config {
	return Config{
		RequestsPerWindow: 60,
		Window:            time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

type window struct {
	start time.Time
	count int
}

// Limiter tracks request counts per client IP in fixed windows. Stale
// clients are evicted by a background goroutine until Stop is called.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	limit           int
	windowLen       time.Duration
	cleanupInterval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

func NewLimiter(config Config) *Limiter {
	if config.RequestsPerWindow <= 0 {
		config.RequestsPerWindow = DefaultConfig().RequestsPerWindow
	}
	if config.Window <= 0 {
		config.Window = DefaultConfig().Window
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	l := &Limiter{
		windows:         make(map[string]*window),
		limit:           config.RequestsPerWindow,
		windowLen:       config.Window,
		cleanupInterval: config.CleanupInterval,
		stop:            make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow records a request from clientIP and reports whether it is within
// the current window's budget.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[clientIP]
	if !ok || now.Sub(w.start) >= l.windowLen {
		l.windows[clientIP] = &window{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= l.limit
}

// RetryAfter returns how long clientIP has to wait until its window resets.
// Zero means the client may retry immediately.
func (l *Limiter) RetryAfter(clientIP string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[clientIP]
	if !ok || w.count < l.limit {
		return 0
	}
	remaining := l.windowLen - time.Since(w.start)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ActiveClients returns the number of currently tracked clients.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Stop shuts down the cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictStale()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Anything idle for two full windows can be forgotten.
	cutoff := time.Now().Add(-2 * l.windowLen)
	for ip, w := range l.windows {
		if w.start.Before(cutoff) {
			delete(l.windows, ip)
		}
	}
}
