package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a fixed-window per-client request counter. Windows reset
// lazily on access; a background sweep drops idle clients so the map does
// not grow without bound.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateWindow
	window  time.Duration
	limit   int
	now     func() time.Time
	logger  *slog.Logger
	respond responder
}

type rateWindow struct {
	start time.Time
	count int
}

// NewRateLimiter constructs a limiter and starts its sweep goroutine, which
// stops when ctx is cancelled.
func NewRateLimiter(ctx context.Context, window time.Duration, limit int, now func() time.Time, logger *slog.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if limit <= 0 {
		limit = 240
	}
	if now == nil {
		now = time.Now
	}
	rl := &RateLimiter{
		clients: make(map[string]*rateWindow),
		window:  window,
		limit:   limit,
		now:     now,
		logger:  defaultLogger(logger),
		respond: newResponder(logger),
	}
	go rl.sweep(ctx)
	return rl
}

// Allow records one request for the client and reports whether it fits the
// current window.
func (rl *RateLimiter) Allow(client string) bool {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	win, ok := rl.clients[client]
	if !ok || now.Sub(win.start) >= rl.window {
		rl.clients[client] = &rateWindow{start: now, count: 1}
		return true
	}
	win.count++
	return win.count <= rl.limit
}

// Middleware applies the limiter to every request, keyed by remote IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddr(r)
		if !rl.Allow(client) {
			w.Header().Set("Retry-After", rl.window.String())
			rl.respond.writeJSON(r.Context(), w, http.StatusTooManyRequests, errorResponse{Message: "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := rl.now().Add(-2 * rl.window)
			rl.mu.Lock()
			for client, win := range rl.clients {
				if win.start.Before(cutoff) {
					delete(rl.clients, client)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
