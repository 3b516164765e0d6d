package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/uvecheck-mcp-server/internal/domain"
)

// defaultMaxClients bounds the number of per-client limiters kept in memory
const defaultMaxClients = 10000

// RateLimiter keeps one token bucket per client IP. Least recently seen
// clients are evicted once maxClients is reached.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *lru.Cache[string, *rate.Limiter]
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second per client
func NewRateLimiter(rps float64, burst, maxClients int) (*RateLimiter, error) {
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}
	clients, err := lru.New[string, *rate.Limiter](maxClients)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: clients,
		now:     time.Now,
	}, nil
}

func (r *RateLimiter) limiterFor(key string) *rate.Limiter {
	if l, ok := r.clients.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(r.limit, r.burst)
	// Another request may have raced us; keep whichever landed first.
	if existing, ok, _ := r.clients.PeekOrAdd(key, l); ok {
		return existing
	}
	return l
}

// Allow reports whether the client may proceed, and if not how long to wait
func (r *RateLimiter) Allow(key string) (bool, time.Duration) {
	l := r.limiterFor(key)
	now := r.now()

	reservation := l.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Second
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Middleware rejects requests over the limit with 429 and a Retry-After header
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	limitHeader := strconv.FormatFloat(float64(r.limit), 'f', -1, 64)

	return func(c *gin.Context) {
		c.Header("X-RateLimit-Limit", limitHeader)

		ok, wait := r.Allow(c.ClientIP())
		if ok {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(wait.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.Header("X-RateLimit-Remaining", "0")

		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": domain.NewMCPError(
				domain.ErrRateLimit,
				"rate limit exceeded",
				"retry after "+strconv.Itoa(retryAfter)+"s",
				c.GetString(CorrelationIDKey),
			),
		})
	}
}
