package order

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// ListOrdersUseCase 订单列表
type ListOrdersUseCase struct {
	orderRepo order.Repository
	log       zerolog.Logger
}

// NewListOrdersUseCase 创建订单列表用例
func NewListOrdersUseCase(orderRepo order.Repository, log zerolog.Logger) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo, log: log}
}

// Execute 返回全部订单的汇总，最新的在前；一笔都没有时返回ErrNoOrders
func (uc *ListOrdersUseCase) Execute(ctx context.Context) ([]OrderSummary, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ListOrders")
	defer span.End()

	orders, err := uc.orderRepo.FindAll(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		logger.FromContext(ctx, uc.log).Error().Err(err).Msg("查询订单列表失败")
		return nil, err
	}
	if len(orders) == 0 {
		return nil, order.ErrNoOrders
	}

	list := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		list = append(list, OrderSummary{
			ID:            o.ID,
			TotalQuantity: o.TotalQuantity(),
			TotalPrice:    o.TotalPrice(),
		})
	}
	return list, nil
}

// GetOrderUseCase 订单详情
type GetOrderUseCase struct {
	orderRepo order.Repository
	log       zerolog.Logger
}

// NewGetOrderUseCase 创建订单详情用例
func NewGetOrderUseCase(orderRepo order.Repository, log zerolog.Logger) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo, log: log}
}

// OrderDetail 订单详情响应
type OrderDetail struct {
	ID            uint              `json:"id"`
	UserID        uint              `json:"user_id"`
	Items         []OrderItemDetail `json:"items"`
	TotalQuantity int               `json:"total_quantity"`
	TotalPrice    int64             `json:"total_price"`
	CreatedAt     string            `json:"created_at"`
}

// OrderItemDetail 订单明细
type OrderItemDetail struct {
	BookID        uint   `json:"book_id"`
	BookTitle     string `json:"book_title"`
	Quantity      int    `json:"quantity"`
	SubtotalPrice int64  `json:"subtotal_price"`
}

// Execute 查询单个订单
func (uc *GetOrderUseCase) Execute(ctx context.Context, id uint) (*OrderDetail, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetOrder")
	defer span.End()

	o, err := uc.orderRepo.FindByID(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		if apperrors.IsInternal(err) {
			logger.FromContext(ctx, uc.log).Error().Err(err).Uint("order_id", id).Msg("查询订单失败")
		}
		return nil, err
	}

	items := make([]OrderItemDetail, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDetail{
			BookID:        item.BookID,
			BookTitle:     item.BookTitle,
			Quantity:      item.Quantity,
			SubtotalPrice: item.Subtotal(),
		})
	}
	return &OrderDetail{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         items,
		TotalQuantity: o.TotalQuantity(),
		TotalPrice:    o.TotalPrice(),
		CreatedAt:     o.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
