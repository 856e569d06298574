package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-review-service/internal/auth"
	"travel-review-service/internal/logging"
	"travel-review-service/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := gin.New()
	r.GET("/me", AuthRequired(tokens), func(c *gin.Context) {
		email, _ := Identity(c)
		c.String(http.StatusOK, email)
	})

	t.Run("no header", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Token is missing"}`, rec.Body.String())
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid token"}`, rec.Body.String())
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := tokens.Issue("ana@x.io")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := serve(r, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ana@x.io", rec.Body.String())
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "info", "json")

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	t.Run("propagates request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		rec := serve(r, req)

		assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
		assert.Contains(t, buf.String(), `"request_id":"req-1"`)
		assert.Contains(t, buf.String(), `"status":418`)
	})

	t.Run("generates request id", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
	})
}

func TestMetrics(t *testing.T) {
	m := metrics.New("mw")
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/uploads/:filename", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/uploads/a.jpg", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/uploads/b.jpg", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	count, err := testutil.GatherAndCount(m.Registry(), "mw_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series for the route template, one for unmatched")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://app.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://app.example")
	rec := serve(r, req)
	assert.Equal(t, "http://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = serve(r, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.example")
	rec = serve(r, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, logging.Discard())
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return frozen }

	r := gin.New()
	r.POST("/generate_itinerary", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/generate_itinerary", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		codes = append(codes, serve(r, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodPost, "/generate_itinerary", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, http.StatusOK, serve(r, other).Code)

	require.Equal(t, 2, rl.size())
	rl.now = func() time.Time { return frozen.Add(time.Hour) }
	rl.Cleanup(time.Minute)
	assert.Equal(t, 0, rl.size())
}

func TestRateLimiterForwardedFor(t *testing.T) {
	newEngine := func(proxies []string) *gin.Engine {
		rl := NewRateLimiter(1, 2, logging.Discard())
		frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return frozen }

		r := gin.New()
		require.NoError(t, r.SetTrustedProxies(proxies))
		r.POST("/send-message", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}
	send := func(r *gin.Engine, n int) []int {
		codes := make([]int, 0, n)
		for i := 0; i < n; i++ {
			req := httptest.NewRequest(http.MethodPost, "/send-message", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
			codes = append(codes, serve(r, req).Code)
		}
		return codes
	}

	t.Run("untrusted peer is keyed by socket address", func(t *testing.T) {
		codes := send(newEngine(nil), 6)
		assert.Equal(t, http.StatusOK, codes[0])
		assert.Equal(t, http.StatusOK, codes[1])
		for _, code := range codes[2:] {
			assert.Equal(t, http.StatusTooManyRequests, code)
		}
	})

	t.Run("trusted proxy forwards client address", func(t *testing.T) {
		codes := send(newEngine([]string{"10.0.0.0/8"}), 3)
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusOK}, codes)
	})
}
