// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client IP. Entries idle for
// longer than staleAfter are dropped on the next sweep.
type IPRateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*ipLimiter
	perMinute  int
	lastSweep  time.Time
	staleAfter time.Duration
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters:   make(map[string]*ipLimiter),
		perMinute:  perMinute,
		lastSweep:  time.Now(),
		staleAfter: 10 * time.Minute,
	}
}

// Allow reports whether a request from ip is within the limit.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.staleAfter {
		for k, v := range rl.limiters {
			if now.Sub(v.lastSeen) > rl.staleAfter {
				delete(rl.limiters, k)
			}
		}
		rl.lastSweep = now
	}

	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60.0), rl.perMinute),
		}
		rl.limiters[ip] = l
	}
	l.lastSeen = now

	return l.limiter.Allow()
}

// RateLimit rejects requests over the per-IP limit with 429.
func RateLimit(rl *IPRateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(GetClientIP(r)) {
			ErrorResponse(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
