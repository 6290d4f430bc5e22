package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func TestLimiter_AllowsBurstThenBlocks(t *testing.T) {
	l := New(3, time.Hour)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("4th request should be blocked")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("other keys have their own bucket")
	}
}

func TestLimiter_ResetAndRemaining(t *testing.T) {
	l := New(2, time.Hour)
	defer l.Stop()

	if l.Remaining("k") != 2 {
		t.Errorf("Remaining(untracked) = %d, want 2", l.Remaining("k"))
	}
	l.Allow("k")
	l.Allow("k")
	if l.Remaining("k") != 0 {
		t.Errorf("Remaining = %d, want 0", l.Remaining("k"))
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("Reset should restore the bucket")
	}
}

func TestLimiter_CleanupDropsIdleKeys(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	l.Allow("idle")
	if l.Len() != 1 {
		t.Fatalf("Len = %d, want 1", l.Len())
	}
	l.cleanup(time.Now().Add(3 * time.Minute))
	if l.Len() != 0 {
		t.Errorf("Len after cleanup = %d, want 0", l.Len())
	}
}

func TestMiddleware_Returns429(t *testing.T) {
	l := New(1, time.Hour)
	defer l.Stop()

	calls := 0
	h := l.Middleware("contact", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/contact-support", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := post(); rec.Code != http.StatusOK {
		t.Fatalf("first POST status = %d", rec.Code)
	}
	rec := post()
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second POST status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// GETs are never limited.
	req := httptest.NewRequest(http.MethodGet, "/contact-support", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Errorf("RemoteAddr: got %q", got)
	}

	// Client-supplied headers cannot pick the bucket.
	req.Header.Set("X-Real-IP", "10.0.0.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Errorf("spoofed headers: got %q, want 10.0.0.1", got)
	}
}

func TestClientIP_BehindRealIP(t *testing.T) {
	var got string
	h := middleware.RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIP(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "203.0.113.7" {
		t.Errorf("ClientIP behind RealIP = %q, want 203.0.113.7", got)
	}
}

func TestMiddleware_RotatedForwardedForSharesBucket(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	calls := 0
	h := l.Middleware("contact", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	for _, xff := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/contact-support", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		req.Header.Set("X-Forwarded-For", xff)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestLoginLimiter_AccountLimit(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Hour)
	defer ll.Stop()

	req := httptest.NewRequest("POST", "/login", nil)
	if !ll.Check(req, "a@example.com") || !ll.Check(req, " A@Example.com ") {
		t.Fatal("first two attempts should pass")
	}
	if ll.Check(req, "a@example.com") {
		t.Error("third attempt for the same account should be blocked")
	}
	ll.Reset("a@example.com")
	if !ll.Check(req, "a@example.com") {
		t.Error("Reset should clear the account limit")
	}
}

func TestLoginLimiter_IPLimit(t *testing.T) {
	ll := NewLoginLimiterWithConfig(1, time.Hour, 100, time.Hour)
	defer ll.Stop()

	req := httptest.NewRequest("POST", "/login", nil)
	ll.Check(req, "a@example.com")
	if ll.Check(req, "b@example.com") {
		t.Error("second attempt from the same IP should be blocked")
	}
}
