package user

import (
	"context"
)

// Repository 用户仓储接口
// DDD设计说明：
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在infrastructure/persistence/rdb层
// 3. 便于单元测试（Mock此接口）
type Repository interface {
	// Create 创建用户
	// 邮箱已存在返回ErrEmailDuplicate（由UNIQUE索引保证，不存在先查后插的竞态）
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户，不存在返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户，不存在返回ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail 邮箱是否已注册
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
