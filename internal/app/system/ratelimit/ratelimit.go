// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"go.uber.org/zap"
)

// Limiter is a per-key token bucket. limit tokens refill evenly over
// duration, and up to limit requests may burst. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    int
	duration time.Duration
	every    rate.Limit
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// New creates a limiter allowing limit requests per duration for each key.
func New(limit int, duration time.Duration) *Limiter {
	if limit < 1 {
		limit = 1
	}
	l := &Limiter{
		buckets:  make(map[string]*bucket),
		limit:    limit,
		duration: duration,
		every:    rate.Every(duration / time.Duration(limit)),
		ttl:      duration * 2, // a bucket idle this long is full again
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Stop ends the background cleanup.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.every, l.limit)}
		l.buckets[key] = b
	}
	b.lastAccess = time.Now()
	return b.limiter
}

// Allow reports whether a request for key may proceed, consuming a token.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Remaining returns the whole tokens currently available for key.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	b, ok := l.buckets[key]
	l.mu.Unlock()
	if !ok {
		return l.limit
	}
	n := int(b.limiter.Tokens())
	if n < 0 {
		return 0
	}
	return n
}

// Reset forgets key, giving it a full bucket.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Len is the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RetryAfter estimates the seconds until one token is back.
func (l *Limiter) RetryAfter() int {
	sec := int((l.duration / time.Duration(l.limit)).Seconds() + 0.999)
	if sec < 1 {
		sec = 1
	}
	return sec
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if now.Sub(b.lastAccess) > l.ttl {
			delete(l.buckets, key)
		}
	}
}

// Middleware limits requests per client IP. Only state-changing methods
// are counted; GETs always pass. Blocked requests get 429 with Retry-After.
func (l *Limiter) Middleware(name string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			ip := ClientIP(r)
			if !l.Allow(ip) {
				logger.Warn("rate limit exceeded",
					zap.String("limiter", name),
					zap.String("ip", ip),
					zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", strconv.Itoa(l.RetryAfter()))
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of r.RemoteAddr. Proxy headers are not read
// here; behind a trusted proxy, chi's middleware.RealIP rewrites RemoteAddr
// before this runs.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter tracks both IP-based and account-based limits to slow down
// distributed attacks and attacks on a single account.
type LoginLimiter struct {
	ipLimiter      *Limiter
	accountLimiter *Limiter
}

// NewLoginLimiter uses 10 attempts per IP per minute and 5 attempts per
// account per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig creates a login limiter with custom limits.
func NewLoginLimiterWithConfig(ipLimit int, ipDuration time.Duration, accountLimit int, accountDuration time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ipLimiter:      New(ipLimit, ipDuration),
		accountLimiter: New(accountLimit, accountDuration),
	}
}

// Check reports whether a login attempt for account (email or phone) may
// proceed.
func (ll *LoginLimiter) Check(r *http.Request, account string) bool {
	if !ll.ipLimiter.Allow(ClientIP(r)) {
		return false
	}
	if key := accountKey(account); key != "" {
		if !ll.accountLimiter.Allow(key) {
			return false
		}
	}
	return true
}

// Reset clears the account limit after a successful sign-in.
func (ll *LoginLimiter) Reset(account string) {
	if key := accountKey(account); key != "" {
		ll.accountLimiter.Reset(key)
	}
}

// Stop ends both limiters' cleanup loops.
func (ll *LoginLimiter) Stop() {
	ll.ipLimiter.Stop()
	ll.accountLimiter.Stop()
}

func accountKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
