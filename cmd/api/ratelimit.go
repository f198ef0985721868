package main

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/propdesk/backoffice/pkg/httputil"
)

// rateLimiter throttles requests per client IP. Idle clients are evicted to
// keep the map bounded.
type rateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	perSec   rate.Limit
	burst    int
	lastScan time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(perSecond, burst int) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*client),
		perSec:  rate.Limit(perSecond),
		burst:   burst,
	}
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastScan) > time.Minute {
		for addr, c := range rl.clients {
			if now.Sub(c.lastSeen) > 3*time.Minute {
				delete(rl.clients, addr)
			}
		}
		rl.lastScan = now
	}

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.perSec, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
