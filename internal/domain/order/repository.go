package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 订单和明细必须在同一事务中创建，事务通过context传递
type Repository interface {
	// Create 创建订单(包含订单明细)，成功后回填ID
	Create(ctx context.Context, order *Order) error

	// FindAll 全部订单(含明细和图书的书名、价格)，按创建时间倒序
	// 已软删除的图书仍会被解析
	FindAll(ctx context.Context) ([]*Order, error)

	// FindByID 查询单个订单，不存在返回ErrOrderNotFound
	FindByID(ctx context.Context, id uint) (*Order, error)

	// SalesSummary 由数据库完成聚合(COUNT / SUM / GROUP BY genre)
	SalesSummary(ctx context.Context) (*SalesSummary, error)
}
