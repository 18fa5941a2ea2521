package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/drivevault/pkg/configs"
)

// RateLimitMiddleware 返回一个基于配置的限流中间件.
// 维度：global（共享一个 limiter）、ip（客户端 IP）、token（Bearer 令牌，
// 匿名请求退回 IP）、header:Name（指定请求头）.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))

	if keyMode == "global" || keyMode == "" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				rejectRateLimited(c)
				return
			}

			c.Next()
		}
	}

	keyFor := limitKeyFunc(keyMode)

	var (
		mu       sync.Mutex
		limiters = map[string]*rate.Limiter{}
	)

	getLimiter := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		if l, ok := limiters[key]; ok {
			return l
		}

		l := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
		limiters[key] = l

		return l
	}

	// 后台清理：不逐个跟踪访问时间，map 过大时整体重置
	go func() {
		const (
			cleanupInterval   = 10 * time.Minute
			maxLimiterEntries = 10000
		)

		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for range ticker.C {
			mu.Lock()
			if len(limiters) > maxLimiterEntries {
				limiters = map[string]*rate.Limiter{}
			}

			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		key := keyFor(c)
		if key == "" {
			key = "unknown"
		}

		if !getLimiter(key).Allow() {
			rejectRateLimited(c)
			return
		}

		c.Next()
	}
}

// limitKeyFunc 根据配置选择限流键的提取方式.
func limitKeyFunc(keyMode string) func(*gin.Context) string {
	switch {
	case strings.HasPrefix(keyMode, "header:"):
		h := strings.TrimPrefix(keyMode, "header:")

		return func(c *gin.Context) string {
			if v := c.GetHeader(h); v != "" {
				return v
			}

			return clientIP(c)
		}
	case keyMode == "token":
		return func(c *gin.Context) string {
			if tok := BearerToken(c); tok != "" {
				return tok
			}

			return clientIP(c)
		}
	default: // ip
		return clientIP
	}
}

func rejectRateLimited(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = c.Request.RemoteAddr
		}
	}

	return ip
}
