package order

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

const tracerName = "application/order"

// TxManager 事务管理（rdb.TxManager实现）
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 订单事件发布（messaging.OrderEventPublisher实现）
// 尽力而为，没有返回值
type EventPublisher interface {
	OrderCreated(ctx context.Context, o *order.Order)
}

// CreateOrderUseCase 创建订单用例
// 涉及:事务处理、并发控制、业务规则校验
type CreateOrderUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	userRepo  user.Repository
	txManager TxManager
	events    EventPublisher
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	txManager TxManager,
	events EventPublisher,
	m *metrics.Metrics,
	log zerolog.Logger,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		userRepo:  userRepo,
		txManager: txManager,
		events:    events,
		metrics:   m,
		log:       log,
	}
}

// CreateOrderRequest 下单请求DTO
type CreateOrderRequest struct {
	ActorID uint              // 当前登录用户ID(从JWT中提取)
	UserID  uint              // 请求体中的user_id，为0时使用ActorID
	Items   []CreateOrderItem // 订单明细
}

// CreateOrderItem 订单明细项
type CreateOrderItem struct {
	BookID   uint
	Quantity int
}

// OrderSummary 下单响应/订单列表项
type OrderSummary struct {
	ID            uint  `json:"id"`
	TotalQuantity int   `json:"total_quantity"`
	TotalPrice    int64 `json:"total_price"` // 分
}

// Execute 执行下单用例
//
// 防止超卖的流程（同一个事务内）:
//  1. 一条SQL批量读取全部图书库存（MySQL按ID升序加FOR UPDATE行锁）
//  2. 任何写操作之前校验：图书存在、同一本书的需求量合计不超过库存
//  3. 插入订单和明细
//  4. 条件UPDATE扣减库存，影响行数为0说明被并发请求抢先，整体回滚
//  5. COMMIT后发布order.created事件
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (resp *OrderSummary, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateOrder")
	defer span.End()

	var sold int
	defer func() {
		tracing.RecordError(span, err)
		uc.metrics.ObserveOrder(orderResult(err), sold, time.Since(start).Seconds())
	}()

	userID := req.UserID
	if userID == 0 {
		userID = req.ActorID
	}
	if req.ActorID != 0 && userID != req.ActorID {
		return nil, order.ErrNotOwner
	}

	lines := make([]order.Line, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, order.Line{BookID: item.BookID, Quantity: item.Quantity})
	}
	newOrder, err := order.NewOrder(userID, lines)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("order.user_id", int(userID)),
		attribute.Int("order.lines", len(lines)),
	)

	if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
		return nil, uc.internal(ctx, err, "查询下单用户失败", userID)
	}

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		ids := newOrder.BookIDs()
		books, err := uc.bookRepo.FindByIDsForUpdate(txCtx, ids)
		if err != nil {
			return err
		}
		if err := order.CheckStock(newOrder, books); err != nil {
			return err
		}

		if err := uc.orderRepo.Create(txCtx, newOrder); err != nil {
			return err
		}

		demand := newOrder.Demand()
		for _, id := range ids {
			if err := uc.bookRepo.DecrementStock(txCtx, id, demand[id]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, uc.internal(ctx, err, "创建订单失败", userID)
	}

	sold = newOrder.TotalQuantity()
	uc.events.OrderCreated(ctx, newOrder)

	logger.FromContext(ctx, uc.log).Info().
		Uint("order_id", newOrder.ID).
		Uint("user_id", userID).
		Int("quantity", sold).
		Int64("total_price", newOrder.TotalPrice()).
		Msg("订单创建成功")

	return &OrderSummary{
		ID:            newOrder.ID,
		TotalQuantity: sold,
		TotalPrice:    newOrder.TotalPrice(),
	}, nil
}

// internal 内部错误记录日志后原样返回，业务错误直接返回
func (uc *CreateOrderUseCase) internal(ctx context.Context, err error, msg string, userID uint) error {
	if apperrors.IsInternal(err) {
		logger.FromContext(ctx, uc.log).Error().Err(err).Uint("user_id", userID).Msg(msg)
	}
	return err
}

func orderResult(err error) string {
	switch {
	case err == nil:
		return metrics.OrderResultSuccess
	case errors.Is(err, book.ErrInsufficientStock):
		return metrics.OrderResultInsufficientStock
	case errors.Is(err, book.ErrBookNotFound), errors.Is(err, user.ErrUserNotFound):
		return metrics.OrderResultNotFound
	case apperrors.IsInternal(err):
		return metrics.OrderResultError
	default:
		return metrics.OrderResultInvalid
	}
}
