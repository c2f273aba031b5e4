package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/frame-ingest/internal/api"
	"github.com/taoyao-code/frame-ingest/internal/api/middleware"
	cfgpkg "github.com/taoyao-code/frame-ingest/internal/config"
	"github.com/taoyao-code/frame-ingest/internal/health"
	"github.com/taoyao-code/frame-ingest/internal/httpserver"
	"github.com/taoyao-code/frame-ingest/internal/metrics"
)

// NewHTTPServer 根据配置创建 HTTP 服务器
func NewHTTPServer(cfg *cfgpkg.Config, metricsHandler http.Handler, readyFn func() bool) *httpserver.Server {
	if !cfg.Metrics.Enable {
		metricsHandler = nil
	}
	return httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, readyFn)
}

// NewRateLimiter 按配置创建共享限流器，未启用时返回 nil
func NewRateLimiter(cfg cfgpkg.RateLimitConfig) *middleware.RateLimiter {
	if !cfg.Enabled {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RatePerSecond, cfg.Burst)
}

// RegisterRoutes 注册接入面与健康检查路由
func RegisterRoutes(
	srv *httpserver.Server,
	surfaces []api.Surface,
	agg *health.Aggregator,
	limiter *middleware.RateLimiter,
	appm *metrics.AppMetrics,
	log *zap.Logger,
) {
	srv.Register(func(r *gin.Engine) {
		for _, s := range surfaces {
			api.RegisterSurfaceRoutes(r, s, limiter, appm, log)
		}
		health.RegisterHTTPRoutes(r, agg)
	})
}
