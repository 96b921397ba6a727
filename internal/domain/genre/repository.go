package genre

import (
	"context"
)

// Repository 分类仓储接口
type Repository interface {
	// Create 创建分类，名称重复返回ErrGenreDuplicate
	Create(ctx context.Context, genre *Genre) error

	// FindByID 不存在返回ErrGenreNotFound
	FindByID(ctx context.Context, id uint) (*Genre, error)

	// FindAll 按ID升序返回全部分类
	FindAll(ctx context.Context) ([]*Genre, error)

	// Update 更新分类名称
	Update(ctx context.Context, genre *Genre) error

	// Delete 删除分类(软删除)
	Delete(ctx context.Context, id uint) error
}
