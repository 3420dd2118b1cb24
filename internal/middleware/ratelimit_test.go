package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_BurstThenRefill(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 3, RefillPerMinute: 60})
	now := time.Now()

	for i := 0; i < 3; i++ {
		if ok, _ := l.allow("1.2.3.4", now); !ok {
			t.Fatalf("request %d within burst denied", i)
		}
	}

	ok, retry := l.allow("1.2.3.4", now)
	if ok {
		t.Fatal("request beyond burst allowed")
	}
	if retry < 1 {
		t.Errorf("retryAfter = %d, want >= 1", retry)
	}

	// One token per second at 60/min: two seconds later there's room again.
	if ok, _ := l.allow("1.2.3.4", now.Add(2*time.Second)); !ok {
		t.Error("request after refill denied")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 1, RefillPerMinute: 60})
	now := time.Now()

	if ok, _ := l.allow("1.1.1.1", now); !ok {
		t.Fatal("first client's first request denied")
	}
	if ok, _ := l.allow("1.1.1.1", now); ok {
		t.Fatal("first client's second request allowed")
	}

	// A different client has its own bucket.
	if ok, _ := l.allow("2.2.2.2", now); !ok {
		t.Error("second client throttled by first client's bucket")
	}
}

func TestRateLimit_Responds429(t *testing.T) {
	mw := RateLimit(RateLimitConfig{Burst: 1, RefillPerMinute: 1})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/snippets", nil)
	req.RemoteAddr = "10.0.0.1:55555"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
}
