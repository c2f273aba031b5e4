package app

import (
	"github.com/taoyao-code/frame-ingest/internal/health"
	"github.com/taoyao-code/frame-ingest/internal/storage"
)

// NewHealthAggregator 为每个接入面存储以及后端连接创建检查器
func NewHealthAggregator(stores *Stores) *health.Aggregator {
	agg := health.NewAggregator()
	for _, name := range stores.Names() {
		if hc, ok := stores.Get(name).(storage.HealthChecker); ok {
			agg.AddChecker(health.NewStoreChecker("store:"+name, hc))
		}
	}
	if stores.redis != nil {
		agg.AddChecker(health.NewRedisChecker(stores.redis, stores.redisKeys...))
	}
	if stores.pool != nil {
		agg.AddChecker(health.NewDatabaseChecker(stores.pool))
	}
	return agg
}
