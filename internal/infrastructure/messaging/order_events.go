// Package messaging 订单领域事件发布
//
// 下单事务提交后发布order.created事件。发布是尽力而为的：
// 失败只记日志和指标，不影响下单结果；RabbitMQ不可用时熔断器打开，
// 后续请求直接跳过发布，不会拖慢下单接口。
package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// RoutingKeyOrderCreated 订单创建事件的routing key
const RoutingKeyOrderCreated = "order.created"

// Publisher 消息发布接口（mq.Publisher实现）
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// OrderCreatedEvent order.created消息体
type OrderCreatedEvent struct {
	OrderID       uint             `json:"order_id"`
	UserID        uint             `json:"user_id"`
	Items         []OrderEventItem `json:"items"`
	TotalQuantity int              `json:"total_quantity"`
	TotalPrice    int64            `json:"total_price"`
	CreatedAt     time.Time        `json:"created_at"`
}

// OrderEventItem 事件中的订单明细
type OrderEventItem struct {
	BookID    uint  `json:"book_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

// NewOrderCreatedEvent 由订单构造事件
func NewOrderCreatedEvent(o *order.Order) OrderCreatedEvent {
	items := make([]OrderEventItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderEventItem{
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return OrderCreatedEvent{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Items:         items,
		TotalQuantity: o.TotalQuantity(),
		TotalPrice:    o.TotalPrice(),
		CreatedAt:     o.CreatedAt,
	}
}

// OrderEventPublisher 订单事件发布者
type OrderEventPublisher struct {
	pub     Publisher
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     zerolog.Logger
	timeout time.Duration
}

// Options 发布配置
type Options struct {
	BreakerFailures    uint32        // 连续失败N次后熔断
	BreakerOpenTimeout time.Duration // 熔断后多久进入半开
	PublishTimeout     time.Duration // 单次发布超时
}

// NewOrderEventPublisher 创建订单事件发布者
func NewOrderEventPublisher(pub Publisher, m *metrics.Metrics, log zerolog.Logger, opts Options) *OrderEventPublisher {
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 3 * time.Second
	}

	log = log.With().Str("component", "order_events").Logger()
	breaker := circuitbreaker.New("rabbitmq", circuitbreaker.Config{
		Timeout:     opts.BreakerOpenTimeout,
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(opts.BreakerFailures),
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("熔断器状态变化")
			m.SetCircuitBreakerState(name, int(to))
		},
	})

	return &OrderEventPublisher{
		pub:     pub,
		breaker: breaker,
		metrics: m,
		log:     log,
		timeout: opts.PublishTimeout,
	}
}

// OrderCreated 发布order.created事件
// 请求ctx取消不影响发布（事务已经提交），但有独立的超时
func (p *OrderEventPublisher) OrderCreated(ctx context.Context, o *order.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	event := NewOrderCreatedEvent(o)
	err := p.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		return p.pub.Publish(ctx, RoutingKeyOrderCreated, event)
	})

	switch {
	case err == nil:
		p.metrics.IncCircuitBreakerRequest(p.breaker.Name(), "success")
		p.metrics.IncMessagePublished(RoutingKeyOrderCreated, "success")
	case errors.Is(err, circuitbreaker.ErrOpenState):
		p.metrics.IncCircuitBreakerRequest(p.breaker.Name(), "rejected")
		p.metrics.IncMessagePublished(RoutingKeyOrderCreated, "skipped")
		p.log.Warn().Uint("order_id", o.ID).Msg("熔断器打开，跳过订单事件发布")
	default:
		p.metrics.IncCircuitBreakerRequest(p.breaker.Name(), "failure")
		p.metrics.IncMessagePublished(RoutingKeyOrderCreated, "failure")
		p.log.Error().Err(err).Uint("order_id", o.ID).Msg("订单事件发布失败")
	}
}

// NopPublisher 未启用MQ时使用，丢弃所有事件
type NopPublisher struct{}

// OrderCreated 什么都不做
func (NopPublisher) OrderCreated(context.Context, *order.Order) {}
