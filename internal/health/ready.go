package health

import "sync/atomic"

// Readiness 启动阶段的就绪标记：存储已打开、HTTP 已监听
type Readiness struct {
	storesReady atomic.Bool
	httpReady   atomic.Bool
	draining    atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetStoresReady(v bool) { r.storesReady.Store(v) }
func (r *Readiness) SetHTTPReady(v bool)   { r.httpReady.Store(v) }

// SetDraining 进入关闭流程后 readyz 返回 not-ready
func (r *Readiness) SetDraining(v bool) { r.draining.Store(v) }

// Ready 总体就绪
func (r *Readiness) Ready() bool {
	return r.storesReady.Load() && r.httpReady.Load() && !r.draining.Load()
}
