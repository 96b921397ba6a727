// Package metrics 提供基于Prometheus的指标收集
//
// 指标类型：
//   - Counter：只增不减的累计值（请求数、订单数）
//   - Gauge：可增可减的瞬时值（处理中的请求数、熔断器状态）
//   - Histogram：观测值分布（耗时），用于计算P50/P90/P99
//
// 所有指标挂在Metrics结构体上，注册到调用方传入的Registry，
// 测试可以用独立的prometheus.NewRegistry()，互不干扰。
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds）。
// 避免高基数标签：path使用路由模板（/orders/:id），不用user_id做标签。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 下单结果标签
const (
	OrderResultSuccess           = "success"
	OrderResultInsufficientStock = "insufficient_stock"
	OrderResultNotFound          = "not_found"
	OrderResultInvalid           = "invalid"
	OrderResultError             = "error"
)

// Metrics 应用指标集合
type Metrics struct {
	gatherer prometheus.Gatherer

	// HTTP请求指标
	HTTPRequestsTotal      *prometheus.CounterVec   // 标签：method、path、status
	HTTPRequestDuration    *prometheus.HistogramVec // 标签：method、path
	HTTPRequestsInProgress prometheus.Gauge

	// 订单业务指标
	OrdersTotal           *prometheus.CounterVec // 标签：result
	OrderCreationDuration prometheus.Histogram
	BooksSoldTotal        prometheus.Counter

	// 熔断器指标
	CircuitBreakerState    *prometheus.GaugeVec   // 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerRequests *prometheus.CounterVec // 标签：name、result（success/failure/rejected）

	// 消息发布指标
	MessagesPublishedTotal *prometheus.CounterVec // 标签：routing_key、result
}

// New 创建并注册所有指标
// reg为nil时使用新的独立Registry
func New(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		}, []string{"method", "path"}),

		HTTPRequestsInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		}),

		OrdersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "下单请求总数（按结果区分）",
		}, []string{"result"}),

		OrderCreationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_creation_duration_seconds",
			Help:      "订单创建耗时（秒）",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),

		BooksSoldTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_sold_total",
			Help:      "已售出图书册数",
		}),

		CircuitBreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		}, []string{"name"}),

		CircuitBreakerRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "熔断器请求总数",
		}, []string{"name", "result"}),

		MessagesPublishedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "消息发布总数",
		}, []string{"routing_key", "result"}),
	}
}

// RegisterRuntimeCollectors 注册Go运行时和进程指标（goroutine数、GC、内存、fd）
func RegisterRuntimeCollectors(reg prometheus.Registerer) error {
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	return reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// Handler /metrics端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest 记录一次HTTP请求
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// ObserveOrder 记录一次下单结果
func (m *Metrics) ObserveOrder(result string, booksSold int, seconds float64) {
	m.OrdersTotal.WithLabelValues(result).Inc()
	m.OrderCreationDuration.Observe(seconds)
	if result == OrderResultSuccess && booksSold > 0 {
		m.BooksSoldTotal.Add(float64(booksSold))
	}
}

// SetCircuitBreakerState 记录熔断器状态
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// IncCircuitBreakerRequest 记录熔断器请求结果
func (m *Metrics) IncCircuitBreakerRequest(name, result string) {
	m.CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// IncMessagePublished 记录消息发布结果
func (m *Metrics) IncMessagePublished(routingKey, result string) {
	m.MessagesPublishedTotal.WithLabelValues(routingKey, result).Inc()
}
