package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/apierror"
	"github.com/JonnyWalker81/moodtrack/backend/internal/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client with a token bucket per key
type RateLimiter struct {
	clients map[string]*clientInfo
	mu      sync.Mutex
	rate    int           // requests per window
	window  time.Duration // time window
	name    string        // identifier for logging
	done    chan struct{}
	once    sync.Once
}

type clientInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter allowing rate requests per window
// for each client, with bursts up to rate
func NewRateLimiter(requests int, window time.Duration, name string) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientInfo),
		rate:    requests,
		window:  window,
		name:    name,
		done:    make(chan struct{}),
	}

	go rl.cleanup()

	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.Int("rate", requests),
		logger.Duration("window", window),
	)

	return rl
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

// cleanup removes clients not seen for two windows
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
		}

		rl.mu.Lock()
		now := time.Now()
		cleaned := 0
		for key, info := range rl.clients {
			if now.Sub(info.lastSeen) > rl.window*2 {
				delete(rl.clients, key)
				cleaned++
			}
		}
		remaining := len(rl.clients)
		rl.mu.Unlock()

		if cleaned > 0 {
			logger.Default().Debug("rate limiter cleanup completed",
				logger.String("name", rl.name),
				logger.Int("cleaned", cleaned),
				logger.Int("remaining", remaining),
			)
		}
	}
}

// isAllowed consumes one token for key and reports whether the request may
// proceed together with the tokens left
func (rl *RateLimiter) isAllowed(key string) (bool, int) {
	rl.mu.Lock()
	info, exists := rl.clients[key]
	if !exists {
		every := rl.window / time.Duration(max(rl.rate, 1))
		info = &clientInfo{limiter: rate.NewLimiter(rate.Every(every), rl.rate)}
		rl.clients[key] = info
	}
	info.lastSeen = time.Now()
	rl.mu.Unlock()

	allowed := info.limiter.Allow()
	return allowed, max(int(info.limiter.Tokens()), 0)
}

// retryAfter is the number of whole seconds until one token is refilled
func (rl *RateLimiter) retryAfter() int {
	seconds := rl.window.Seconds() / float64(max(rl.rate, 1))
	return max(int(math.Ceil(seconds)), 1)
}

// RateLimit limits each authenticated user, or client IP before
// authentication, to requestsPerMinute requests
func RateLimit(requestsPerMinute int) gin.HandlerFunc {
	return rateLimitMiddleware(NewRateLimiter(requestsPerMinute, time.Minute, "insights"))
}

func rateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("user_id")
		if key == "" {
			key = c.ClientIP()
		}

		allowed, remaining := limiter.isAllowed(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			logger.Ctx(c.Request.Context()).Warn("rate limit exceeded",
				logger.String("limiter", limiter.name),
				logger.String("client", key),
				logger.Int("limit", limiter.rate),
				logger.Duration("window", limiter.window),
			)

			apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), limiter.retryAfter()))
			c.Abort()
			return
		}

		c.Next()
	}
}
