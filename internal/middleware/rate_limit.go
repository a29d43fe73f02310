package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimit applies a fixed-window per-client limit backed by Redis.
// Authenticated callers are keyed by user ID, anonymous ones by IP. A nil
// client disables limiting entirely, and Redis errors fail open: losing the
// limiter must never take the API down with it.
func RateLimit(client *redis.Client, requests int, window time.Duration, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}

		identity := c.ClientIP()
		if user, ok := GetUserFromContext(c); ok {
			identity = user.UserID.String()
		}
		key := fmt.Sprintf("ratelimit:%s:%d", identity, time.Now().Unix()/int64(window.Seconds()))

		ctx := c.Request.Context()
		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.WithError(err).Warn("Rate limiter unavailable, failing open")
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, window)
		}

		if count > int64(requests) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests, slow down",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
