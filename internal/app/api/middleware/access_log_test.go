package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core).Sugar(), logs
}

func TestAccessLogUsesRequestScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base, logs := observedLogger()

	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(base), AccessLogMiddleware(base))
	r.POST("/api/v1/payment/momo/ipn", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/momo/ipn", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	entries := logs.FilterMessage("http_access").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	require.Equal(t, "trace-123", fields["trace_id"])
	require.Equal(t, "POST", fields["method"])
	require.Equal(t, true, fields["webhook"])
}

func TestAccessLogFallsBackToBaseLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base, logs := observedLogger()

	// No request logger attached: FromGin falls back to base.
	r := gin.New()
	r.Use(AccessLogMiddleware(base))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.FilterMessage("http_access").All()
	require.Len(t, entries, 1)
	require.Equal(t, false, entries[0].ContextMap()["webhook"])
}
