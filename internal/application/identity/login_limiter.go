package identity

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client IP with a token bucket.
// Idle buckets are dropped by a background loop stopped with Close.
type LoginLimiter struct {
	mu       sync.Mutex
	clients  map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows perMinute attempts per IP on average with the given burst
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	if perMinute <= 0 {
		perMinute = 5
	}
	if burst <= 0 {
		burst = perMinute
	}
	l := &LoginLimiter{
		clients:  make(map[string]*limiterEntry),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		stopChan: make(chan struct{}),
	}
	go l.cleanupLoop(time.Minute)
	return l
}

// Allow reports whether an attempt from ip may proceed and consumes a token if so
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// Size returns the number of tracked clients
func (l *LoginLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Close stops the cleanup loop
func (l *LoginLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stopChan) })
}

func (l *LoginLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.purgeIdle(time.Now())
		case <-l.stopChan:
			return
		}
	}
}

func (l *LoginLimiter) purgeIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.clients, ip)
		}
	}
}
