// Package metrics 基于Prometheus的指标收集
//
// 指标分三类：
//   - HTTP：请求总数、耗时、处理中的请求数
//   - 业务：图书的创建/更新/删除次数，缓存命中情况
//   - 依赖：熔断器状态、事件发布结果、存储连接重试
//
// 使用示例：
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(metrics.Handler()))
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds）。
// 标签只使用有限取值（method、route模板、status），不要用book id这类高基数字段。
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，如/api/books/:id）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// BooksCreatedTotal 图书创建总数
	BooksCreatedTotal prometheus.Counter

	// BooksUpdatedTotal 图书更新总数
	BooksUpdatedTotal prometheus.Counter

	// BooksDeletedTotal 图书删除总数
	BooksDeletedTotal prometheus.Counter

	// BookCacheRequests 图书缓存访问次数
	// 标签：result（hit/miss/error）
	BookCacheRequests *prometheus.CounterVec

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// MessagesPublishedTotal 事件发布次数
	// 标签：exchange、routing_key、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec

	// StoreConnectAttempts 启动时存储连接尝试次数
	// 标签：result（success/failure）
	StoreConnectAttempts *prometheus.CounterVec
)

// InitMetrics 注册所有指标到默认Registry，可重复调用
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP请求耗时（秒）",
			// 1ms ~ 10s
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	BooksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_created_total",
		Help: "图书创建总数",
	})
	BooksUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_updated_total",
		Help: "图书更新总数",
	})
	BooksDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "books_deleted_total",
		Help: "图书删除总数",
	})

	BookCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_cache_requests_total",
			Help: "图书缓存访问次数",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "事件发布次数",
		},
		[]string{"exchange", "routing_key", "result"},
	)

	StoreConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_connect_attempts_total",
			Help: "存储连接尝试次数",
		},
		[]string{"result"},
	)
}

// Handler 暴露/metrics端点
func Handler() http.Handler {
	return promhttp.Handler()
}

// 以下便捷函数在InitMetrics之前调用时为空操作，
// 便于在未启用指标的单元测试中直接使用业务代码。

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	if counter != nil {
		counter.Inc()
	}
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels prometheus.Labels) {
	if counter != nil {
		counter.With(labels).Inc()
	}
}

// SetGaugeVec 设置GaugeVec
func SetGaugeVec(gauge *prometheus.GaugeVec, labels prometheus.Labels, value float64) {
	if gauge != nil {
		gauge.With(labels).Set(value)
	}
}

// ObserveHistogramVec 记录HistogramVec观测值
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels prometheus.Labels, value float64) {
	if histogram != nil {
		histogram.With(labels).Observe(value)
	}
}
