package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rlBucket struct {
	windowStart time.Time
	count       int
}

var rlMu sync.Mutex
var rlBuckets = make(map[string]*rlBucket)

// SimpleRateLimit is the in-memory fixed-window fallback used when
// Redis is absent. Buckets are keyed by client IP and route so the
// login limiter never starves the public status endpoint.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + "|" + c.FullPath()
		now := time.Now()

		rlMu.Lock()
		b, ok := rlBuckets[key]
		if !ok || now.Sub(b.windowStart) > window {
			rlBuckets[key] = &rlBucket{windowStart: now, count: 1}
			rlMu.Unlock()
			c.Next()
			return
		}
		b.count++
		blocked := b.count > maxRequests
		rlMu.Unlock()

		if blocked {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
