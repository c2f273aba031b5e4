package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taoyao-code/frame-ingest/internal/api"
	cfgpkg "github.com/taoyao-code/frame-ingest/internal/config"
	"github.com/taoyao-code/frame-ingest/internal/metrics"
	"github.com/taoyao-code/frame-ingest/internal/storage/csvstore"
)

func testConfig(t *testing.T) *cfgpkg.Config {
	t.Helper()
	cfg, err := cfgpkg.Load(filepath.Join("..", "..", "configs", "example.yaml"))
	require.NoError(t, err)
	cfg.Storage.CSVDir = t.TempDir()
	cfg.Logging.File.Filename = ""
	return cfg
}

func TestOpenStoresCSV(t *testing.T) {
	cfg := testConfig(t)

	stores, err := OpenStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer stores.Close()

	assert.Equal(t, []string{api.SurfaceFrame, api.SurfacePayload}, stores.Names())
	frames, ok := stores.Get(api.SurfaceFrame).(*csvstore.Store)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(cfg.Storage.CSVDir, "frames.csv"), frames.Path())

	agg := NewHealthAggregator(stores)
	results := agg.CheckAll(context.Background())
	assert.Contains(t, results, "store:frame")
	assert.Contains(t, results, "store:payload")
}

func TestOpenStoresDisabledSurface(t *testing.T) {
	cfg := testConfig(t)
	cfg.Surfaces.Frame.Enabled = false

	stores, err := OpenStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer stores.Close()
	assert.Equal(t, []string{api.SurfacePayload}, stores.Names())

	surfaces, err := BuildSurfaces(cfg, stores)
	require.NoError(t, err)
	require.Len(t, surfaces, 1)
	assert.Equal(t, api.PayloadRoutes, surfaces[0].Routes)
}

func TestOpenStoresUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "sqlite"
	_, err := OpenStores(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

// 按配置组装完整路由后走一遍写入、读取
func TestWiredServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	stores, err := OpenStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer stores.Close()
	surfaces, err := BuildSurfaces(cfg, stores)
	require.NoError(t, err)

	reg, appm := NewMetrics()
	srv := NewHTTPServer(cfg, metrics.Handler(reg), func() bool { return true })
	RegisterRoutes(srv, surfaces, NewHealthAggregator(stores), NewRateLimiter(cfg.HTTP.RateLimit), appm, zap.NewNop())

	do := func(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		for k, v := range header {
			req.Header.Set(k, v)
		}
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, "/data", `{"payload":"010401e3"}`, map[string]string{"api-key": cfg.Auth.APIKey})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(http.MethodPost, "/data", `{"payload":"010401e4"}`, map[string]string{"api-key": cfg.Auth.APIKey})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid CRC"}`, rr.Body.String())

	rr = do(http.MethodPost, "/write", `{"frame":"010401e4"}`,
		map[string]string{"Authorization": cfg.Auth.APIKey, "Content-Type": "application/json"})
	assert.JSONEq(t, `{"error":"Malformed Frame"}`, rr.Body.String())

	rr = do(http.MethodPost, "/write", `{"payload":"010401e3"}`,
		map[string]string{"Authorization": cfg.Auth.APIKey, "Content-Type": "application/json"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"'frame'"}`, rr.Body.String())

	rr = do(http.MethodPost, "/data", `{"frame":"010401e3"}`, map[string]string{"api-key": cfg.Auth.APIKey})
	assert.JSONEq(t, `{"error":"Missing key: 'payload'"}`, rr.Body.String())

	rr = do(http.MethodGet, "/read", "", map[string]string{"Authorization": cfg.Auth.APIKey, "Content-Type": "application/json"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(http.MethodGet, "/data/last", "", map[string]string{"api-key": cfg.Auth.APIKey})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"payload":"010401e3"`)

	rr = do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ingest_write_total")
	assert.Equal(t, float64(1), testutil.ToFloat64(appm.RecordsAppended.WithLabelValues(api.SurfacePayload)))
}

func TestRateLimiterDisabled(t *testing.T) {
	assert.Nil(t, NewRateLimiter(cfgpkg.RateLimitConfig{Enabled: false}))
	assert.NotNil(t, NewRateLimiter(cfgpkg.RateLimitConfig{Enabled: true, RatePerSecond: 1, Burst: 1}))
}
