package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestTakeExhaustsWindow(t *testing.T) {
	l := newRateLimiter(RateLimitConfig{Window: time.Minute, MaxRequests: 3})
	now := time.Now()

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := l.take("10.0.0.1", now)
		if !allowed {
			t.Fatalf("request %d: expected allowed", i+1)
		}
		if remaining != 3-(i+1) {
			t.Fatalf("request %d: remaining = %d, want %d", i+1, remaining, 3-(i+1))
		}
	}

	allowed, remaining, reset := l.take("10.0.0.1", now)
	if allowed {
		t.Fatal("expected request over the threshold to be denied")
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
	if reset <= 0 || reset > time.Minute {
		t.Fatalf("reset = %v, want within (0, 1m]", reset)
	}
}

func TestTakeResetsAfterWindow(t *testing.T) {
	l := newRateLimiter(RateLimitConfig{Window: time.Minute, MaxRequests: 1})
	now := time.Now()

	if allowed, _, _ := l.take("10.0.0.1", now); !allowed {
		t.Fatal("first request should be allowed")
	}
	if allowed, _, _ := l.take("10.0.0.1", now); allowed {
		t.Fatal("second request in the same window should be denied")
	}
	if allowed, _, _ := l.take("10.0.0.1", now.Add(time.Minute)); !allowed {
		t.Fatal("request in the next window should be allowed")
	}
}

func TestTakeIsolatesClients(t *testing.T) {
	l := newRateLimiter(RateLimitConfig{Window: time.Minute, MaxRequests: 1})
	now := time.Now()

	l.take("10.0.0.1", now)
	if allowed, _, _ := l.take("10.0.0.2", now); !allowed {
		t.Fatal("another client should not share the first client's window")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{Window: time.Minute, MaxRequests: 2})
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	do := func() (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		rec := httptest.NewRecorder()
		return rec, handler(e.NewContext(req, rec))
	}

	rec, err := do()
	if err != nil {
		t.Fatalf("first request: unexpected error %v", err)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Fatalf("X-RateLimit-Limit = %q, want %q", got, "2")
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "1" {
		t.Fatalf("X-RateLimit-Remaining = %q, want %q", got, "1")
	}

	if _, err := do(); err != nil {
		t.Fatalf("second request: unexpected error %v", err)
	}

	rec, err = do()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("third request: expected *echo.HTTPError, got %v", err)
	}
	if he.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", he.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header on denial")
	}
}
