package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter allows max requests per client IP in a sliding window.
type RateLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string][]time.Time
	swept   time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{max: max, window: window, now: time.Now, clients: make(map[string][]time.Time)}
}

// allow records a request from ip. When the window is full it returns how
// long until the oldest request leaves it.
func (rl *RateLimiter) allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)
	if now.Sub(rl.swept) > rl.window {
		rl.sweep(cutoff)
		rl.swept = now
	}

	recent := inWindow(rl.clients[ip], cutoff)
	if len(recent) >= rl.max {
		rl.clients[ip] = recent
		return false, recent[0].Sub(cutoff)
	}
	rl.clients[ip] = append(recent, now)
	return true, 0
}

// sweep forgets clients with no request inside the window.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	for ip, times := range rl.clients {
		if len(inWindow(times, cutoff)) == 0 {
			delete(rl.clients, ip)
		}
	}
}

// inWindow drops the leading timestamps at or before cutoff; times is
// kept in arrival order.
func inWindow(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

// Middleware keys on RemoteAddr, which chi's RealIP has already resolved
// from X-Forwarded-For or X-Real-IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ok, wait := rl.allow(ip)
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
