// Package ratelimit keeps a per-client-IP request counter over a rolling
// window. State lives in process memory only.
//
// Records are never evicted, so the map grows with the number of distinct
// IPs seen since start. That is acceptable at the traffic this service sees.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultDailyLimit = 20
	DefaultWindow     = 24 * time.Hour
)

type record struct {
	count       int
	windowStart time.Time
}

type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	records map[string]*record
}

type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.window = d
		}
	}
}

func New(limit int, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	l := &Limiter{
		limit:   limit,
		window:  DefaultWindow,
		now:     time.Now,
		records: make(map[string]*record),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// CheckAndIncrement admits the request and counts it, or refuses it without
// counting. The compare and the increment happen under one lock.
func (l *Limiter) CheckAndIncrement(ip string) (bool, int) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.records[ip]
	if !ok {
		r = &record{windowStart: now}
		l.records[ip] = r
	} else if now.Sub(r.windowStart) >= l.window {
		r.count = 0
		r.windowStart = now
	}

	if r.count >= l.limit {
		return false, 0
	}
	r.count++
	return true, l.limit - r.count
}

// Remaining reports how many requests ip may still make in its window.
func (l *Limiter) Remaining(ip string) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.records[ip]
	if !ok || now.Sub(r.windowStart) >= l.window {
		return l.limit
	}
	if r.count >= l.limit {
		return 0
	}
	return l.limit - r.count
}

func (l *Limiter) Limit() int { return l.limit }
