// Package middleware 提供HTTP中间件
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/frame-ingest/internal/ingest"
	"github.com/taoyao-code/frame-ingest/internal/metrics"
)

// APIKeyAuth 共享密钥认证中间件
//
// 请求头名称由校验器决定：
//  1. 帧接入面: Authorization: <key>
//  2. 负载接入面: api-key: <key>
//
// 读、写接口都需要认证
func APIKeyAuth(v *ingest.Validator, surface string, m *metrics.AppMetrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := v.CheckAPIKey(c.Request.Header); err != nil {
			logger.Warn("api auth: invalid or missing api key",
				zap.String("surface", surface),
				zap.String("header", v.APIKeyHeader()),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.String("remote_addr", c.ClientIP()),
				zap.String("api_key_prefix", maskAPIKey(c.GetHeader(v.APIKeyHeader()))),
			)
			reject(c, err, surface, m)
			return
		}
		c.Set("authenticated", true)
		c.Next()
	}
}

// RequireJSON Content-Type 校验中间件，校验器未启用时直接放行
func RequireJSON(v *ingest.Validator, surface string, m *metrics.AppMetrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := v.CheckContentType(c.Request.Header); err != nil {
			logger.Warn("invalid content type",
				zap.String("surface", surface),
				zap.String("path", c.Request.URL.Path),
				zap.String("content_type", c.GetHeader("Content-Type")),
			)
			reject(c, err, surface, m)
			return
		}
		c.Next()
	}
}

func reject(c *gin.Context, err error, surface string, m *metrics.AppMetrics) {
	ve, ok := ingest.AsValidationError(err)
	if !ok {
		c.AbortWithStatusJSON(500, gin.H{"error": err.Error()})
		return
	}
	if m != nil {
		m.RejectedTotal.WithLabelValues(surface, ve.Kind.String()).Inc()
	}
	c.AbortWithStatusJSON(ve.Kind.Status(), gin.H{"error": ve.Message})
}

// maskAPIKey 脱敏API Key（仅显示前4位和后4位）
func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
