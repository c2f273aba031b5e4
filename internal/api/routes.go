package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/frame-ingest/internal/api/middleware"
	"github.com/taoyao-code/frame-ingest/internal/metrics"
)

// RegisterSurfaceRoutes 注册一个接入面的读写路由。
// 中间件顺序: 限流(可选) -> API Key -> Content-Type(可选)，读写接口同样适用。
func RegisterSurfaceRoutes(
	r *gin.Engine,
	s Surface,
	limiter *middleware.RateLimiter,
	m *metrics.AppMetrics,
	logger *zap.Logger,
) {
	if r == nil || s.Validator == nil || s.Store == nil {
		return
	}

	handler := NewSurfaceHandler(s, m, logger)

	g := r.Group("/")
	if limiter != nil {
		g.Use(middleware.RateLimit(limiter, s.Name, m))
	}
	g.Use(middleware.APIKeyAuth(s.Validator, s.Name, m, logger))
	if s.Validator.RequiresContentType() {
		g.Use(middleware.RequireJSON(s.Validator, s.Name, m, logger))
	}

	g.GET(s.Routes.All, handler.ReadAll)
	g.GET(s.Routes.Last, handler.ReadLast)
	g.GET(s.Routes.LastN, handler.ReadLastN)
	g.POST(s.Routes.Write, handler.Write)

	logger.Info("surface routes registered",
		zap.String("surface", s.Name),
		zap.String("api_key_header", s.Validator.APIKeyHeader()),
		zap.Bool("require_content_type", s.Validator.RequiresContentType()),
		zap.String("field", s.Validator.Field()),
	)
}
