package web

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/fulfillment/internal/web/middleware"
)

// errRateLimited maps to RATE001.
var errRateLimited = errors.New("rate limit exceeded")

// rateLimiter allows rate requests per client IP in each fixed window.
// Stale clients are dropped lazily, at most once per window.
type rateLimiter struct {
	mu        sync.Mutex
	rate      int
	window    time.Duration
	clients   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

type window struct {
	start time.Time
	used  int
}

func newRateLimiter(rate int, every time.Duration) *rateLimiter {
	return &rateLimiter{
		rate:    rate,
		window:  every,
		clients: make(map[string]*window),
		now:     time.Now,
	}
}

// allow records a request from ip and reports whether it is within the limit.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.window {
		for k, w := range rl.clients {
			if now.Sub(w.start) > rl.window {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	w, ok := rl.clients[ip]
	if !ok || now.Sub(w.start) > rl.window {
		w = &window{start: now}
		rl.clients[ip] = w
	}
	if w.used >= rl.rate {
		return false
	}
	w.used++
	return true
}

// middleware answers 429 with Retry-After once a client is over its limit.
// RemoteAddr has already been rewritten by TrustedRealIP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if addr := middleware.ExtractIP(r.RemoteAddr); addr != nil {
			ip = addr.String()
		}
		if !rl.allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
