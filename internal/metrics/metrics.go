// Package metrics 定义服务暴露给 Prometheus 的指标。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revivewell_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "revivewell_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthFailures 按失败原因统计被认证中间件拒绝的请求
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revivewell_auth_failures_total",
			Help: "Requests rejected by the access guard",
		},
		[]string{"reason"},
	)

	// UpstreamCalls 统计 LLM、抓取、地理编码等外部调用结果
	UpstreamCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revivewell_upstream_calls_total",
			Help: "Calls to external collaborators by service and outcome",
		},
		[]string{"service", "outcome"},
	)
)

// RecordUpstream 记录一次外部调用，err 为 nil 视为成功。
func RecordUpstream(service string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamCalls.WithLabelValues(service, outcome).Inc()
}

// Middleware 统计请求数量与耗时，路由使用模板路径避免标签爆炸。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
