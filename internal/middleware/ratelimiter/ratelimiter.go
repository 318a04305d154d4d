// Package ratelimiter keeps one token bucket per client identity.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	timer   *time.Timer
}

// IdentityRateLimiter forgets an identity after it has been idle for
// expiration, so the map doesn't grow without bound.
type IdentityRateLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	rps        rate.Limit
	burst      int
	expiration time.Duration
}

func New(rps float64, burst int, expiration time.Duration) *IdentityRateLimiter {
	return &IdentityRateLimiter{
		visitors:   make(map[string]*visitor),
		rps:        rate.Limit(rps),
		burst:      burst,
		expiration: expiration,
	}
}

func (rl *IdentityRateLimiter) getLimiter(id string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[id]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[id] = v
		v.timer = time.AfterFunc(rl.expiration, func() { rl.forget(id, v) })
		return v.limiter
	}
	v.timer.Reset(rl.expiration)
	return v.limiter
}

func (rl *IdentityRateLimiter) forget(id string, v *visitor) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	// a newer visitor may have replaced v
	if rl.visitors[id] == v {
		delete(rl.visitors, id)
	}
}

// Allow reports whether id may proceed now and consumes a token if so.
func (rl *IdentityRateLimiter) Allow(id string) bool {
	return rl.getLimiter(id).Allow()
}

func (rl *IdentityRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Stop cancels all expiry timers.
func (rl *IdentityRateLimiter) Stop() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for id, v := range rl.visitors {
		v.timer.Stop()
		delete(rl.visitors, id)
	}
}
