package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/travelviet/tourpay/pkg/logctx"
)

// Gateway-initiated deliveries; flagged in access logs so webhook traffic
// can be filtered from end-user requests.
var webhookPaths = []string{
	"/api/v1/payment/momo/ipn",
	"/api/v1/payment/zalopay/callback",
}

// AccessLogMiddleware logs HTTP access through the request-scoped logger
// when RequestLoggerMiddleware attached one, falling back to base.
func AccessLogMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		logctx.FromGin(c, base).Infow("http_access",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"webhook", lo.Contains(webhookPaths, c.FullPath()),
		)
	}
}
