package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	last  time.Time
	count int
}

// SimpleRateLimit blocks clients that send more than maxRequests per window.
// Each call gets its own counters.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientInfo)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		ci, ok := clients[ip]
		if !ok || now.Sub(ci.last) > window {
			clients[ip] = &clientInfo{last: now, count: 1}
			mu.Unlock()
			c.Next()
			return
		}
		ci.count++
		count := ci.count
		mu.Unlock()

		if count > maxRequests {
			RLBlocked.WithLabelValues("local:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues("local:" + c.FullPath()).Inc()
		c.Next()
	}
}
