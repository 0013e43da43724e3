package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter keeps one token bucket per client address.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    time.Duration
	burst    int
}

// NewLoginLimiter allows perMinute attempts per client, 10 when perMinute
// is not positive.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &LoginLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    time.Minute / time.Duration(perMinute),
		burst:    perMinute,
	}
}

// Allow spends one attempt of client.
func (l *LoginLimiter) Allow(client string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[client]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.every), l.burst)
		l.limiters[client] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
