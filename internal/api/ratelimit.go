package api

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/uxtriage/uxtriage/internal/metrics"
)

// rateLimit defines limits for an endpoint pattern.
type rateLimit struct {
	Requests int
	Window   time.Duration
}

// RateLimiter implements sliding window rate limiting backed by Redis,
// keyed by client IP. Conversation turns are expensive (a model call per
// iteration), so /chat gets the tightest budget.
type RateLimiter struct {
	client *redis.Client
	logger zerolog.Logger
	limits map[string]rateLimit
}

// NewRateLimiter creates a rate limiter for the chat and search endpoints.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		logger: logger,
		limits: map[string]rateLimit{
			"POST /chat": {20, time.Minute},
			"GET /find":  {60, time.Minute},
		},
	}
}

// realIP extracts the real client IP from headers or connection.
func realIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// checkAndIncrement checks the limit and records the request.
// Returns (allowed, remaining, resetAt).
func (rl *RateLimiter) checkAndIncrement(r *http.Request, key string, limit rateLimit) (bool, int, time.Time) {
	ctx := r.Context()
	now := time.Now()
	windowStart := now.Add(-limit.Window)
	windowKey := fmt.Sprintf("%s:%d", key, now.Unix()/int64(limit.Window.Seconds()))

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, windowKey, "-inf", fmt.Sprintf("%d", windowStart.UnixMilli()))
	countCmd := pipe.ZCard(ctx, windowKey)
	pipe.ZAdd(ctx, windowKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, windowKey, limit.Window*2)
	_, _ = pipe.Exec(ctx)

	count := countCmd.Val()
	remaining := limit.Requests - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}
	return count < int64(limit.Requests), remaining, now.Add(limit.Window)
}

// Middleware returns the rate limiting middleware.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, ok := rl.limits[r.Method+" "+r.URL.Path]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ip := realIP(r)
		key := "ratelimit:ip:" + ip
		allowed, remaining, resetAt := rl.checkAndIncrement(r, key, limit)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())))
			metrics.RateLimitHits.WithLabelValues(r.URL.Path).Inc()

			rl.logger.Warn().
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Msg("rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
