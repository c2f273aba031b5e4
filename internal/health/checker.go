package health

import (
	"context"
	"fmt"
	"time"

	"github.com/taoyao-code/frame-ingest/internal/storage"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"   // 健康
	StatusDegraded  Status = "degraded"  // 降级（部分功能受损但仍可服务）
	StatusUnhealthy Status = "unhealthy" // 不健康（无法服务）
)

// CheckResult 健康检查结果
type CheckResult struct {
	Status  Status                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Latency time.Duration          `json:"latency"`
}

// Checker 健康检查器接口
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// StoreChecker 记录存储健康检查，每个接入面一个
type StoreChecker struct {
	name  string
	store storage.HealthChecker
}

// NewStoreChecker 创建存储检查器，name 一般为 "store:<接入面>"
func NewStoreChecker(name string, store storage.HealthChecker) *StoreChecker {
	return &StoreChecker{name: name, store: store}
}

// Name 返回检查器名称
func (c *StoreChecker) Name() string {
	return c.name
}

// Check 执行健康检查
func (c *StoreChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if err := c.store.HealthCheck(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("store unavailable: %v", err),
			Latency: time.Since(start),
		}
	}
	return CheckResult{Status: StatusHealthy, Message: "ok", Latency: time.Since(start)}
}
