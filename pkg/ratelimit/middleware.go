package ratelimit

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"ewait/internal/shared/utils/response"
	"ewait/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Middleware enforces per-IP limits. Redis failures let the request through.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.Request.Method, c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "rate limit check failed",
				slog.String("ip", clientIP),
				slog.String("error", err.Error()),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			logger.GetDefault().LogRateLimitExceeded(c.Request.Context(), clientIP, c.FullPath(), string(limitType))
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getRateLimitType maps a route pattern (gin FullPath) to its limit bucket
func getRateLimitType(method, path string) RateLimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"):
		return RateLimitTypeHealth

	case strings.HasSuffix(path, "/payments/webhook"):
		return RateLimitTypeExempt

	case strings.Contains(path, "/analytics"):
		return RateLimitTypeAnalytics

	case strings.Contains(path, "/auth/"):
		return RateLimitTypeAuth

	case strings.HasSuffix(path, "/queues/join"):
		return RateLimitTypeJoin

	case strings.HasSuffix(path, "/call-next"),
		strings.HasSuffix(path, "/complete"),
		strings.Contains(path, "/locations"),
		strings.Contains(path, "/entries/") && method == http.MethodPatch,
		strings.Contains(path, "/queues") && (method == http.MethodPost || method == http.MethodPatch):
		return RateLimitTypeStaff

	// Status polling and the public board
	case strings.Contains(path, "/entries/"),
		strings.Contains(path, "/queues"):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// getClientIP prefers proxy headers when they carry a valid address
func getClientIP(c *gin.Context) string {
	if xForwardedFor := c.GetHeader("X-Forwarded-For"); xForwardedFor != "" {
		ip := strings.TrimSpace(strings.Split(xForwardedFor, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := c.GetHeader("X-Real-IP"); xRealIP != "" && net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
