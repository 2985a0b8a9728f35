package middleware

import (
	"net/http"
	"sync"

	"pawlina-api/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter 存储每个IP的限流器
type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  *sync.RWMutex
	r   rate.Limit
	b   int
}

// NewIPRateLimiter 创建一个新的IP限流器
// r: 每秒允许的请求数 (QPS)
// b: 桶的大小 (Burst)
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		mu:  &sync.RWMutex{},
		r:   r,
		b:   b,
	}
}

// GetLimiter 获取指定IP的限流器
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}

	return limiter
}

// 全局限流器与认证接口限流器
// 认证接口阈值更低，防止撞库 (原站 express-rate-limit 同样两档)
var (
	generalLimiter = NewIPRateLimiter(100, 300)
	authLimiter    = NewIPRateLimiter(1, 30)
)

// RateLimitMiddleware 通用限流中间件
func RateLimitMiddleware() gin.HandlerFunc {
	return limitWith(generalLimiter)
}

// AuthRateLimitMiddleware 登录/注册接口限流中间件
func AuthRateLimitMiddleware() gin.HandlerFunc {
	return limitWith(authLimiter)
}

func limitWith(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.GetLimiter(ip).Allow() {
			response.Error(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
