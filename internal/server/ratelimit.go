package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
)

// exportLimiter is a per-client token bucket guarding /api/export, which
// encodes the whole session on every request.
//
// Each client starts with burst tokens that refill at rate per window. A
// bucket that has refilled completely is indistinguishable from a new one,
// so such buckets are swept once per refill period. It reads time from a
// Clock so tests can drive it with a VirtualClock.
type exportLimiter struct {
	clock    clock.Clock
	perSec   float64
	capacity int

	refill time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// limitDecision is the outcome of one take.
type limitDecision struct {
	Allowed    bool
	Remaining  int
	Limit      int
	RetryAfter time.Duration
}

func newExportLimiter(rate int, window time.Duration, burst int, c clock.Clock) *exportLimiter {
	if burst <= 0 {
		burst = rate
	}
	perSec := float64(rate) / window.Seconds()
	return &exportLimiter{
		clock:     c,
		perSec:    perSec,
		capacity:  burst,
		refill:    time.Duration(float64(burst) / perSec * float64(time.Second)),
		buckets:   make(map[string]*bucket),
		lastSweep: c.Now(),
	}
}

func (l *exportLimiter) take(key string) limitDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Sub(l.lastSweep) >= l.refill {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.capacity), lastFill: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastFill).Seconds() * l.perSec
	if b.tokens > float64(l.capacity) {
		b.tokens = float64(l.capacity)
	}
	b.lastFill = now

	if b.tokens >= 1 {
		b.tokens--
		return limitDecision{Allowed: true, Remaining: int(b.tokens), Limit: l.capacity}
	}
	wait := time.Duration((1 - b.tokens) / l.perSec * float64(time.Second))
	return limitDecision{Limit: l.capacity, RetryAfter: wait}
}

// sweep drops buckets that would be full at now. Callers hold l.mu.
func (l *exportLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if b.tokens+now.Sub(b.lastFill).Seconds()*l.perSec >= float64(l.capacity) {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

func (l *exportLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// clientKey identifies the caller by remote host, ignoring the port.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// limited wraps next with the limiter and sets the X-RateLimit headers.
func (l *exportLimiter) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := l.take(clientKey(r))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(d.RetryAfter.Seconds())+1))
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "export rate limit exceeded"})
			return
		}
		next(w, r)
	}
}
