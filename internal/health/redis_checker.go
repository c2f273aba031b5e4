package health

import (
	"context"
	"fmt"
	"time"

	redisstorage "github.com/taoyao-code/frame-ingest/internal/storage/redis"
)

// RedisChecker Redis健康检查器，仅 redis 存储后端启用
type RedisChecker struct {
	client *redisstorage.Client
	keys   []string
}

// NewRedisChecker 创建Redis健康检查器，keys 为各接入面的记录列表键
func NewRedisChecker(client *redisstorage.Client, keys ...string) *RedisChecker {
	return &RedisChecker{client: client, keys: keys}
}

// Name 返回检查器名称
func (c *RedisChecker) Name() string {
	return "redis"
}

// Check 执行健康检查
func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	if err := c.client.HealthCheck(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}

	stats := c.client.Stats()
	utilization := 0.0
	if stats.TotalConns > 0 {
		utilization = float64(stats.TotalConns-stats.IdleConns) / float64(stats.TotalConns)
	}

	status := StatusHealthy
	message := "ok"
	if utilization > 0.9 {
		status = StatusDegraded
		message = "connection pool near limit"
	}

	details := map[string]interface{}{
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"timeouts":    stats.Timeouts,
		"utilization": fmt.Sprintf("%.1f%%", utilization*100),
	}
	records := make(map[string]int64, len(c.keys))
	for _, key := range c.keys {
		n, err := c.client.LLen(ctx, key).Result()
		if err != nil {
			status = StatusDegraded
			message = fmt.Sprintf("llen %s: %v", key, err)
			continue
		}
		records[key] = n
	}
	if len(records) > 0 {
		details["records"] = records
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: details,
		Latency: time.Since(start),
	}
}
