package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taoyao-code/frame-ingest/internal/ingest"
	"github.com/taoyao-code/frame-ingest/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(t *testing.T, handlers ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id")})
	})
	return r
}

func serve(r http.Handler, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAPIKeyAuthAndRequireJSON(t *testing.T) {
	v, err := ingest.New(ingest.Options{
		APIKey: "ColdPlay2025", APIKeyHeader: "Authorization", RequireContentType: true, Field: "frame",
	})
	require.NoError(t, err)
	m := metrics.NewAppMetrics(prometheus.NewRegistry())
	r := newEngine(t,
		APIKeyAuth(v, "frame", m, zap.NewNop()),
		RequireJSON(v, "frame", m, zap.NewNop()),
	)

	rr := serve(r, http.Header{})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Unauthorized. Invalid or missing API key."}`, rr.Body.String())

	rr = serve(r, http.Header{"Authorization": {"ColdPlay2025"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid Content-Type. Expected application/json."}`, rr.Body.String())

	rr = serve(r, http.Header{"Authorization": {"ColdPlay2025"}, "Content-Type": {"application/json"}})
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RejectedTotal.WithLabelValues("frame", "unauthorized")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RejectedTotal.WithLabelValues("frame", "invalid_content_type")))
}

func TestRequireJSONDisabled(t *testing.T) {
	v, err := ingest.New(ingest.Options{APIKey: "k", APIKeyHeader: "api-key", Field: "payload"})
	require.NoError(t, err)
	r := newEngine(t, APIKeyAuth(v, "payload", nil, zap.NewNop()), RequireJSON(v, "payload", nil, zap.NewNop()))

	rr := serve(r, http.Header{"Api-Key": {"k"}})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequestTracing(t *testing.T) {
	r := newEngine(t, RequestTracing())

	rr := serve(r, http.Header{RequestIDHeader: {"req-given"}})
	assert.Equal(t, "req-given", rr.Header().Get(RequestIDHeader))
	assert.JSONEq(t, `{"request_id":"req-given"}`, rr.Body.String())

	rr = serve(r, http.Header{})
	assert.Len(t, rr.Header().Get(RequestIDHeader), 36)
}

func TestRateLimit(t *testing.T) {
	l := NewRateLimiter(1, 2)
	m := metrics.NewAppMetrics(prometheus.NewRegistry())
	r := newEngine(t, RateLimit(l, "frame", m))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		codes = append(codes, serve(r, http.Header{}).Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Contains(t, codes[2:], http.StatusTooManyRequests)

	stats := l.Stats()
	assert.Equal(t, 2, stats.Burst)
	assert.Equal(t, int64(4), stats.AllowedTotal+stats.RejectedTotal)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.RateLimited.WithLabelValues("frame")), float64(1))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "", maskAPIKey(""))
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "Cold****2025", maskAPIKey("ColdPlay2025"))
}
