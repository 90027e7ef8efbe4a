package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a per-client token bucket
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	enabled bool
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing requestsPerMin per client
// with the given burst
func NewRateLimiter(enabled bool, requestsPerMin, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burst,
		enabled: enabled,
	}
}

// Allow checks whether a request from the given client is allowed
func (rl *RateLimiter) Allow(client string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	cl, ok := rl.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[client] = cl
	}
	cl.lastSeen = time.Now()
	rl.mu.Unlock()

	return cl.limiter.Allow()
}

// Cleanup removes clients not seen since before cutoff
func (rl *RateLimiter) Cleanup(cutoff time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for client, cl := range rl.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.clients, client)
			removed++
		}
	}
	return removed
}

// Clients returns the number of tracked clients
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}
