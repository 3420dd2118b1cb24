package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitConfig configures the per-IP token bucket limiter applied to the
// mutation routes (create/update/delete/toggle/run).
type RateLimitConfig struct {
	Burst           int           // bucket capacity
	RefillPerMinute int           // tokens added per minute
	MaxEntries      int           // sweep trigger; 0 = unbounded
	IdleTTL         time.Duration // drop buckets idle this long
}

// DefaultRateLimitConfig allows short bursts of activity while keeping the
// sustained rate to one mutation per second per client.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Burst:           20,
		RefillPerMinute: 60,
		MaxEntries:      4096,
		IdleTTL:         15 * time.Minute,
	}
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	lastRef  time.Time
	lastSeen time.Time
}

type limiter struct {
	cfg      RateLimitConfig
	rate     float64 // tokens per second
	capacity float64
	mu       sync.Mutex
	buckets  map[string]*bucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerMinute < 1 {
		cfg.RefillPerMinute = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	return &limiter{
		cfg:      cfg,
		rate:     float64(cfg.RefillPerMinute) / 60.0,
		capacity: float64(cfg.Burst),
		buckets:  make(map[string]*bucket, 64),
	}
}

func (l *limiter) getBucket(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.cfg.IdleTTL {
				delete(l.buckets, k)
			}
		}
	}
	b := l.buckets[key]
	if b == nil {
		b = &bucket{tokens: l.capacity, lastRef: now, lastSeen: now}
		l.buckets[key] = b
	}
	return b
}

// allow refills the bucket from elapsed time, then tries to take one token.
func (l *limiter) allow(key string, now time.Time) (ok bool, retryAfterSec int) {
	b := l.getBucket(key, now)

	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRef).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.rate)
		b.lastRef = now
	}
	b.lastSeen = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true, 0
	}

	sec := int(math.Ceil((1.0 - b.tokens) / l.rate))
	if sec < 1 {
		sec = 1
	}
	return false, sec
}

// RateLimit returns middleware enforcing a per-client-IP token bucket.
//
// Buckets live in process memory: this is operational back-pressure, not
// entity state, so it needs no shared store. Put chi's RealIP middleware
// before this one so RemoteAddr reflects the real client behind a proxy.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				key = r.RemoteAddr
			}

			ok, retry := l.allow(key, time.Now())
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
