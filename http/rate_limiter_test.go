package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sip-dashboard/repository"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRateLimiter_RefillsAfterWindow(t *testing.T) {

	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(2, time.Minute, clock.Now)
	ctx := context.Background()

	if !rl.Allow(ctx, "10.0.0.1") || !rl.Allow(ctx, "10.0.0.1") {
		t.Fatal("expected first two requests to pass")
	}
	if rl.Allow(ctx, "10.0.0.1") {
		t.Fatal("expected third request to be limited")
	}
	if !rl.Allow(ctx, "10.0.0.2") {
		t.Error("expected other clients to have their own bucket")
	}

	clock.Advance(time.Minute)

	if !rl.Allow(ctx, "10.0.0.1") {
		t.Error("expected bucket to refill after the window")
	}
}

func TestRateLimiter_CleanupDropsIdleBuckets(t *testing.T) {

	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(1, time.Minute, clock.Now)

	rl.Allow(context.Background(), "10.0.0.1")
	clock.Advance(2 * time.Hour)
	rl.cleanup()

	if len(rl.clients) != 0 {
		t.Errorf("expected idle bucket to be removed, %d left", len(rl.clients))
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {

	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	rl.Stop()
}

type failingCounter struct{}

func (failingCounter) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestCounterRateLimiter(t *testing.T) {

	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	limiter := NewCounterRateLimiter(repository.NewMemoryCounterWithClock(clock.Now), 2, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if !limiter.Allow(ctx, "10.0.0.1") {
			t.Fatalf("request %d: expected to pass", i+1)
		}
	}
	if limiter.Allow(ctx, "10.0.0.1") {
		t.Fatal("expected third request to be limited")
	}

	clock.Advance(time.Minute + time.Second)

	if !limiter.Allow(ctx, "10.0.0.1") {
		t.Error("expected a new window to reset the count")
	}
}

func TestCounterRateLimiter_FailsOpen(t *testing.T) {

	limiter := NewCounterRateLimiter(failingCounter{}, 1, time.Minute, nil)

	for i := 0; i < 3; i++ {
		if !limiter.Allow(context.Background(), "10.0.0.1") {
			t.Fatalf("request %d: expected counter errors to let requests through", i+1)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {

	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(1, time.Minute, clock.Now)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RateLimitMiddleware(rl, next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5000"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	// same client, different port
	req.RemoteAddr = "192.0.2.7:5001"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}
