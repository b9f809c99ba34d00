package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/oncology-cds-engine/internal/domain"
)

// maxTrackedClients bounds the number of per-client limiters kept in memory.
const maxTrackedClients = 4096

// RateLimiter keeps one token bucket per client IP. The least recently seen clients
// are forgotten once maxTrackedClients is reached.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *lru.Cache[string, *rate.Limiter]
}

// NewRateLimiter creates a limiter from the rate limit settings.
func NewRateLimiter(config domain.RateLimitConfig) (*RateLimiter, error) {
	limiters, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		return nil, err
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(config.RequestsPerSecond),
		burst:    burst,
		limiters: limiters,
	}, nil
}

// Allow reports whether a request from the client may proceed.
func (r *RateLimiter) Allow(client string) bool {
	limiter, ok := r.limiters.Get(client)
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		// A concurrent first request may have added one already; keep whichever won.
		if existing, found, _ := r.limiters.PeekOrAdd(client, limiter); found {
			limiter = existing
		}
	}
	return limiter.Allow()
}

// Middleware rejects requests over the client's rate with 429.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.NewAPIError(
				domain.ErrRateLimit,
				"Too many requests",
				"",
				c.GetString(CorrelationIDKey),
			))
			return
		}
		c.Next()
	}
}
