package middleware

import (
	"lifeline/utils"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Redis     *redis.Client
	Requests  int
	Window    time.Duration
	KeyPrefix string
	// SkipPaths are never limited. SOS intake must always get through.
	SkipPaths []string
}

type RateLimiter struct {
	config  RateLimitConfig
	limiter *utils.SlidingWindowLimiter
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit"
	}
	return &RateLimiter{
		config:  config,
		limiter: utils.NewSlidingWindowLimiter(config.Redis, config.Requests, config.Window),
	}
}

// Middleware limits requests per client IP. Redis failures let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Redis == nil || rl.shouldSkipPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := rl.config.KeyPrefix + ":ip:" + c.ClientIP()
		allowed, remaining, err := rl.limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logrus.Errorf("Rate limit check failed: %v", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(rl.config.Window.Seconds())))
			logrus.WithFields(logrus.Fields{
				"client_ip": c.ClientIP(),
				"path":      c.Request.URL.Path,
				"method":    c.Request.Method,
			}).Warn("Rate limit exceeded")
			utils.RateLimitResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) shouldSkipPath(path string) bool {
	for _, skipPath := range rl.config.SkipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// RateLimitMiddleware is the API-wide limiter. SOS intake, health checks and
// the triage socket are exempt.
func RateLimitMiddleware(redisClient *redis.Client, requests int, window time.Duration) gin.HandlerFunc {
	return NewRateLimiter(RateLimitConfig{
		Redis:     redisClient,
		Requests:  requests,
		Window:    window,
		KeyPrefix: "rate_limit:api",
		SkipPaths: []string{"/create-sos", "/health", "/ws/"},
	}).Middleware()
}
