package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	IngestTotal     *prometheus.CounterVec // labels: surface, result
	RejectedTotal   *prometheus.CounterVec // labels: surface, reason（请求头校验失败）
	ReadTotal       *prometheus.CounterVec // labels: surface, op=all|last|last_n
	RecordsAppended *prometheus.CounterVec // labels: surface
	RateLimited     *prometheus.CounterVec // labels: surface
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		IngestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_write_total",
			Help: "Write requests by surface and validation result.",
		}, []string{"surface", "result"}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_rejected_total",
			Help: "Requests rejected by header checks (api key, content type).",
		}, []string{"surface", "reason"}),
		ReadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_read_total",
			Help: "Read requests by surface and query kind.",
		}, []string{"surface", "op"}),
		RecordsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_records_appended_total",
			Help: "Records appended to the store.",
		}, []string{"surface"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"surface"}),
	}
	reg.MustRegister(m.IngestTotal, m.RejectedTotal, m.ReadTotal, m.RecordsAppended, m.RateLimited)
	return m
}
