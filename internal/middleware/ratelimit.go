package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle enforces a per-client token bucket on the admin API. Job
// triggers are cheap to request but expensive to run, so the limiter is
// keyed by remote IP rather than shared globally. Over-limit requests get
// 429 with a Retry-After hint.
func Throttle(rps float64, burst int) func(http.Handler) http.Handler {
	buckets := newBucketSet(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := buckets.get(clientIP(r))

			res := limiter.Reserve()
			if !res.OK() {
				rejectThrottled(w, 0)
				return
			}
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				rejectThrottled(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			next.ServeHTTP(w, r)
		})
	}
}

const (
	evictInterval = 5 * time.Minute
	maxBucketIdle = 10 * time.Minute
)

type bucketSet struct {
	mu        sync.Mutex
	rps       float64
	burst     int
	seen      map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newBucketSet(rps float64, burst int) *bucketSet {
	return &bucketSet{
		rps:       rps,
		burst:     burst,
		seen:      make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

func (s *bucketSet) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictIdle(time.Now())
	b, ok := s.seen[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.seen[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

// evictIdle drops buckets for clients idle longer than maxBucketIdle. It
// runs inline on get at most once per evictInterval, so the set needs no
// background goroutine. Caller holds the mutex.
func (s *bucketSet) evictIdle(now time.Time) {
	if now.Sub(s.lastSweep) < evictInterval {
		return
	}
	s.lastSweep = now
	for ip, b := range s.seen {
		if now.Sub(b.lastSeen) > maxBucketIdle {
			delete(s.seen, ip)
		}
	}
}

// clientIP keys the limiter on RemoteAddr only. X-Forwarded-For is not
// trusted here; a spoofed header must not reset a client's bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func rejectThrottled(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": "rate limit exceeded",
	})
}
