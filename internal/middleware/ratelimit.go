package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/logger"
	"github.com/AnshRaj112/pulse-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitWindow is the fixed counting window
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests per address per window on the public response endpoints.
	// High enough that link scanners still get recorded and flagged.
	RateLimitMaxRequests = 60
	RateLimitKeyPrefix   = "ratelimit:responses:"
	BlockedIPKeyPrefix   = "blocked_ip:"
	// BlockedIPDuration is how long an address stays blocked after exceeding the limit
	BlockedIPDuration = 15 * time.Minute
)

// ResponseRateLimit counts requests per address in Redis and blocks addresses that
// exceed RateLimitMaxRequests. Redis failures let the request through.
func ResponseRateLimit(client *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientip.FromRequest(r)
			if client == nil || ip == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			blockedKey := BlockedIPKeyPrefix + ip
			blocked, err := client.Exists(ctx, blockedKey).Result()
			if err == nil && blocked > 0 {
				writeTooMany(w, "Your IP has been temporarily blocked due to excessive requests. Please try again later.", BlockedIPDuration)
				return
			}

			key := RateLimitKeyPrefix + ip
			pipe := client.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, RateLimitWindow)
			if _, err := pipe.Exec(ctx); err != nil {
				logger.FromContext(ctx).Debug("rate limit unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			count := int(incr.Val())
			if count > RateLimitMaxRequests {
				if err := client.Set(ctx, blockedKey, "1", BlockedIPDuration).Err(); err == nil {
					logger.FromContext(ctx).Warn("address blocked for excessive responses", "ip", ip, "count", count)
				}
				writeTooMany(w, "Rate limit exceeded. Your IP has been temporarily blocked. Please try again later.", RateLimitWindow)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(RateLimitMaxRequests-count))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(RateLimitWindow).Unix(), 10))
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooMany(w http.ResponseWriter, message string, retryAfter time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintf(w, `{"success":false,"message":%q,"retry_after":%d}`, message, int(retryAfter.Seconds()))
}
