package middleware

import (
	"log"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"
)

// window counts the attempts one client made since start
type window struct {
	hits    int
	resetAt time.Time
}

// RateLimiter is a fixed-window limiter keyed by client address. The login
// route uses it to slow down password guessing.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter allows limit requests per period for each client and
// starts a sweeper that forgets expired windows until Stop is called.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.period)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, win := range rl.clients {
				if !now.Before(win.resetAt) {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the sweeper goroutine
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// allow records a hit for key and reports how long to wait when refused
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	win, ok := rl.clients[key]
	if !ok || !now.Before(win.resetAt) {
		win = &window{resetAt: now.Add(rl.period)}
		rl.clients[key] = win
	}
	win.hits++
	if win.hits <= rl.limit {
		return true, 0
	}
	return false, win.resetAt.Sub(now)
}

// RateLimitEntry is one client's current window
type RateLimitEntry struct {
	IP      string    `json:"ip"`
	Count   int       `json:"count"`
	Blocked bool      `json:"blocked"`
	ResetAt time.Time `json:"reset_at"`
}

// RateLimitStatus is returned by the admin API
type RateLimitStatus struct {
	Limit   int              `json:"limit"`
	Window  string           `json:"window"`
	Entries []RateLimitEntry `json:"entries"`
}

// Status lists the live windows ordered by client address
func (rl *RateLimiter) Status() RateLimitStatus {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entries := make([]RateLimitEntry, 0, len(rl.clients))
	for key, win := range rl.clients {
		if now.Before(win.resetAt) {
			entries = append(entries, RateLimitEntry{
				IP:      key,
				Count:   win.hits,
				Blocked: win.hits > rl.limit,
				ResetAt: win.resetAt,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].IP < entries[j].IP })
	return RateLimitStatus{
		Limit:   rl.limit,
		Window:  rl.period.String(),
		Entries: entries,
	}
}

// Clear forgets every client
func (rl *RateLimiter) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	clear(rl.clients)
}

// Handler enforces the limit. RemoteAddr is the client IP once chi's RealIP
// middleware has run.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.allow(r.RemoteAddr)
		if !ok {
			secs := int((wait + time.Second - 1) / time.Second)
			log.Printf("[ratelimit] %s blocked for %ds on %s", r.RemoteAddr, secs, r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, "too many requests, try again later", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
