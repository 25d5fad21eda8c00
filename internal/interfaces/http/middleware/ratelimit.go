package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per key.
	RequestsPerSecond float64
	// BurstSize is the number of requests allowed at once.
	BurstSize int
	// IdleTTL is how long an unused key keeps its bucket.
	IdleTTL time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware applies a token bucket per authenticated user, or per
// client IP when no user is known. It must run after the auth middleware.
type RateLimitMiddleware struct {
	config RateLimitConfig
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
}

// NewRateLimitMiddleware creates a RateLimitMiddleware.
func NewRateLimitMiddleware(config RateLimitConfig) *RateLimitMiddleware {
	if config.BurstSize < 1 {
		config.BurstSize = 1
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimitMiddleware{
		config:   config,
		now:      time.Now,
		visitors: make(map[string]*visitor),
		lastGC:   time.Now(),
	}
}

// Allow reports whether key may make a request now, with the remaining
// token count.
func (m *RateLimitMiddleware) Allow(key string) (bool, int) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastGC) > m.config.IdleTTL {
		for k, v := range m.visitors {
			if now.Sub(v.lastSeen) > m.config.IdleTTL {
				delete(m.visitors, k)
			}
		}
		m.lastGC = now
	}

	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(m.config.RequestsPerSecond), m.config.BurstSize)}
		m.visitors[key] = v
	}
	v.lastSeen = now
	allowed := v.limiter.AllowN(now, 1)
	remaining := int(math.Max(0, math.Floor(v.limiter.TokensAt(now))))
	return allowed, remaining
}

// Size returns the number of tracked keys.
func (m *RateLimitMiddleware) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}

// Handler enforces the limit, answering 429 with Retry-After when exceeded.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining := m.Allow(rateLimitKey(r))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.config.BurstSize))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		retry := 1
		if m.config.RequestsPerSecond > 0 {
			retry = int(math.Ceil(1 / m.config.RequestsPerSecond))
		}
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    string(errors.ErrCodeTooManyRequests),
			"message": "rate limit exceeded",
		})
	})
}

func rateLimitKey(r *http.Request) string {
	if userID := ContextGetUserID(r.Context()); userID != "" {
		return "user:" + userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

//Personal.AI order the ending
