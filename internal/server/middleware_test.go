package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carexyz/internal/logger"
	"carexyz/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func okRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	router.GET("/bookings/:bookingID", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	return router
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	router := okRouter(MetricsMiddleware())

	pattern := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/bookings/:bookingID", "200")
	before := testutil.ToFloat64(pattern)
	unmatched := metrics.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")
	beforeUnmatched := testutil.ToFloat64(unmatched)

	assert.Equal(t, http.StatusOK, serve(router, "GET", "/bookings/abc").Code)
	assert.Equal(t, http.StatusOK, serve(router, "GET", "/bookings/def").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, "GET", "/nowhere").Code)

	assert.Equal(t, before+2, testutil.ToFloat64(pattern))
	assert.Equal(t, beforeUnmatched+1, testutil.ToFloat64(unmatched))
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	restore := logger.Replace(logger.New(logger.NewJSONCore(&buf, zapcore.DebugLevel)))
	defer restore()

	router := okRouter(RequestLoggingMiddleware())
	serve(router, "GET", "/bookings/abc?session_id=cs_test_secret")
	serve(router, "GET", "/boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "/bookings/abc", first["path"])
	assert.EqualValues(t, 200, first["status"])
	assert.NotContains(t, lines[0], "cs_test_secret")

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "error", second["level"])
	assert.EqualValues(t, 500, second["status"])
}

func TestRateLimitMiddleware(t *testing.T) {
	router := okRouter(RateLimitMiddleware(1, 3))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(router, "GET", "/bookings/abc").Code, "request %d within burst", i+1)
	}

	w := serve(router, "GET", "/bookings/abc")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"code":"rate_limited"`)
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	router := okRouter(RateLimitMiddleware(0, 0))
	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, serve(router, "GET", "/bookings/abc").Code)
	}
}

func TestRateLimiterTracksVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 2, rl.Visitors())
}

func TestCorsMiddleware(t *testing.T) {
	router := okRouter(corsMiddleware())

	w := serve(router, "GET", "/bookings/abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	w = serve(router, "OPTIONS", "/bookings/abc")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
