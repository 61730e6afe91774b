package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig bounds each client IP to MaxRequests per Window.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

// DefaultRateLimitConfig allows 300 requests per minute per client.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Window:      time.Minute,
		MaxRequests: 300,
	}
}

// window counts requests for one client inside the current fixed window.
type window struct {
	start time.Time
	count int
}

type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	cfg     RateLimitConfig
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultRateLimitConfig().MaxRequests
	}
	return &rateLimiter{windows: make(map[string]*window), cfg: cfg}
}

// take registers one request for key. It returns whether the request is
// allowed, how many requests remain in the window, and how long until the
// window resets.
func (l *rateLimiter) take(key string, now time.Time) (bool, int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		// Opportunistically drop clients whose windows have long expired.
		if len(l.windows) > 10000 {
			for k, old := range l.windows {
				if now.Sub(old.start) >= 2*l.cfg.Window {
					delete(l.windows, k)
				}
			}
		}
		w = &window{start: now}
		l.windows[key] = w
	}

	reset := l.cfg.Window - now.Sub(w.start)
	if w.count >= l.cfg.MaxRequests {
		return false, 0, reset
	}
	w.count++
	return true, l.cfg.MaxRequests - w.count, reset
}

// RateLimit returns a per-client-IP fixed-window rate limiting middleware.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	limiter := newRateLimiter(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, remaining, reset := limiter.take(c.RealIP(), time.Now())

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limiter.cfg.MaxRequests))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				h.Set("Retry-After", strconv.Itoa(int(reset/time.Second)+1))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
