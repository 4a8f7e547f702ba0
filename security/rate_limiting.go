package security

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"event-ticketing/internal/status"
	"event-ticketing/utils"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter shared by all instances
// through Redis.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

func limitKey(scope, id string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, id)
}

// Allow counts one request for id in scope and reports whether it is within
// max per window. The window starts at the first request: the counter is
// created with its TTL in the same MULTI as the increment, so a key can never
// be left without an expiry.
func (r *RateLimiter) Allow(ctx context.Context, scope, id string, max int, window time.Duration) (bool, error) {
	key := limitKey(scope, id)

	var count *redis.IntCmd
	if _, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		count = pipe.Incr(ctx, key)
		return nil
	}); err != nil {
		return false, err
	}
	return count.Val() <= int64(max), nil
}

// Limit is route middleware that rejects suspicious clients and throttles
// each client IP to max requests per window. Redis failures let the request
// through.
func (r *RateLimiter) Limit(scope string, max int, window time.Duration) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if isSuspiciousUserAgent(e.Request.Header.Get("User-Agent")) {
			return router.NewForbiddenError("Access denied", nil)
		}

		ip := utils.ClientIP(e.Request)
		allowed, err := r.Allow(e.Request.Context(), scope, ip, max, window)
		if err != nil {
			slog.Warn("rateLimiter.Limit()", "scope", scope, "ip", ip, "error", err)
			return e.Next()
		}
		if !allowed {
			e.Response.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			return router.NewApiError(http.StatusTooManyRequests, status.ErrRateLimited.Message, nil)
		}
		return e.Next()
	}
}

func isSuspiciousUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, pattern := range []string{"bot", "crawler", "spider", "scraper"} {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
