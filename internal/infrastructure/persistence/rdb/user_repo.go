package rdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/user"
)

// userRepository 用户仓储实现
// 1. 实现domain层定义的user.Repository接口
// 2. 负责UserModel与user.User之间的转换
// 3. 把唯一索引冲突、记录不存在翻译为领域错误
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
// 邮箱唯一性由数据库UNIQUE索引保证
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	m := &UserModel{
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if err := getDB(ctx, r.db).Create(m).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrEmailDuplicate
		}
		return dbError(err, "创建用户失败")
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var m UserModel
	if err := getDB(ctx, r.db).First(&m, id).Error; err != nil {
		if isNotFound(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, dbError(err, "查询用户失败")
	}
	return m.toEntity(), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var m UserModel
	err := getDB(ctx, r.db).Where("email = ?", user.NormalizeEmail(email)).First(&m).Error
	if err != nil {
		if isNotFound(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, dbError(err, "查询用户失败")
	}
	return m.toEntity(), nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&UserModel{}).
		Where("email = ?", user.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, dbError(err, "查询邮箱失败")
	}
	return count > 0, nil
}

func (m *UserModel) toEntity() *user.User {
	return &user.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		Password:  m.Password,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
