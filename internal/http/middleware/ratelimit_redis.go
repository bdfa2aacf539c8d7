package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// UseRedis sets the shared Redis client used by the limiters. A nil client
// makes them fall back to the in-process limiter.
func UseRedis(client *redis.Client) {
	redisClient = client
}

// RedisRateLimit implements a simple fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: <prefix>:<window_seconds>:<ip>
func RedisRateLimit(prefix string, maxRequests int, window time.Duration) gin.HandlerFunc {
	fallback := SimpleRateLimit(maxRequests, window)

	return func(c *gin.Context) {
		if maxRequests <= 0 {
			c.Next()
			return
		}
		if redisClient == nil {
			fallback(c)
			return
		}

		key := prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// on Redis error, fail-open (allow) but set header
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			// first increment, set expiry
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(prefix + ":" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(prefix + ":" + c.FullPath()).Inc()
		c.Next()
	}
}
