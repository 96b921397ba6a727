package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 由domain层定义接口，infrastructure层实现；事务通过context传递
type Repository interface {
	// Create 创建图书，书名重复返回ErrTitleDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByID 查询图书(含分类)，不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindAll 查询图书列表(含分类)，按ID升序
	FindAll(ctx context.Context, filter Filter) ([]*Book, error)

	// Update 只保存patch中设置的字段，书名重复返回ErrTitleDuplicate
	Update(ctx context.Context, book *Book, patch Patch) error

	// Delete 删除图书(软删除，历史订单仍能查到书名和价格)
	Delete(ctx context.Context, id uint) error

	// CountByGenre 统计分类下的图书数量
	CountByGenre(ctx context.Context, genreID uint) (int64, error)

	// FindByIDsForUpdate 一次查询批量读取库存
	// 在事务中调用时按ID升序加行锁(MySQL: SELECT ... FOR UPDATE)
	// 不存在的ID不会出现在结果里，由调用方判断
	FindByIDsForUpdate(ctx context.Context, ids []uint) ([]*Book, error)

	// DecrementStock 条件扣减库存
	// UPDATE books SET stock_quantity = stock_quantity - ? WHERE id = ? AND stock_quantity >= ?
	// 影响行数为0返回ErrInsufficientStock
	DecrementStock(ctx context.Context, id uint, quantity int) error
}

// Filter 列表查询条件
type Filter struct {
	GenreID uint // 0表示不过滤
}
