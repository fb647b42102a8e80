package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// limitedRouter authenticates from the X-User header, the way Auth sets
// user_id, and rate limits every request after that
func limitedRouter(limiter *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-User"); user != "" {
			c.Set("user_id", user)
		}
		c.Next()
	})
	router.Use(rateLimitMiddleware(limiter))
	router.GET("/api/v1/insights/triggers", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func limitedRequest(router *gin.Engine, user, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/triggers", nil)
	req.RemoteAddr = remoteAddr
	if user != "" {
		req.Header.Set("X-User", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

// Run with -race: concurrent callers must each get exactly their own budget
func TestRateLimitMiddlewareConcurrentBudgets(t *testing.T) {
	const budget = 5
	// An hour-long window refills nothing during the test
	limiter := NewRateLimiter(budget, time.Hour, "insights-race")
	defer limiter.Stop()
	router := limitedRouter(limiter)

	callers := []struct {
		name       string
		user       string
		remoteAddr string
	}{
		{name: "alice", user: "alice", remoteAddr: "10.0.0.1:4000"},
		// Same address as alice, but authenticated users are keyed by id
		{name: "bob", user: "bob", remoteAddr: "10.0.0.1:4001"},
		// Anonymous callers fall back to their IP
		{name: "anonymous 10.0.0.1", remoteAddr: "10.0.0.1:4002"},
		{name: "anonymous 10.0.0.2", remoteAddr: "10.0.0.2:4000"},
	}

	allowed := make([]atomic.Int32, len(callers))
	limited := make([]atomic.Int32, len(callers))

	var wg sync.WaitGroup
	for i, caller := range callers {
		i, caller := i, caller
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 4; j++ {
					switch limitedRequest(router, caller.user, caller.remoteAddr) {
					case http.StatusOK:
						allowed[i].Add(1)
					case http.StatusTooManyRequests:
						limited[i].Add(1)
					}
				}
			}()
		}
	}
	wg.Wait()

	for i, caller := range callers {
		assert.EqualValues(t, budget, allowed[i].Load(), caller.name)
		assert.EqualValues(t, 8*4-budget, limited[i].Load(), caller.name)
	}
}

// Cleanup evicting idle clients must not race with requests creating them
func TestRateLimitMiddlewareConcurrentWithCleanup(t *testing.T) {
	limiter := NewRateLimiter(5, 20*time.Millisecond, "insights-cleanup")
	defer limiter.Stop()
	router := limitedRouter(limiter)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 30; j++ {
				user := ""
				if j%2 == 0 {
					user = fmt.Sprintf("user-%d", i%4)
				}
				code := limitedRequest(router, user, fmt.Sprintf("10.0.1.%d:5000", i%8))
				assert.Contains(t, []int{http.StatusOK, http.StatusTooManyRequests}, code)
				if j%10 == 0 {
					time.Sleep(5 * time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.LessOrEqual(t, len(limiter.clients), 4+8)
}
