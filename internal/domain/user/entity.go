package user

import (
	"strings"
	"time"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码只保存bcrypt哈希值，序列化输出由DTO控制，实体本身不带json tag
// 2. 一个用户可以有多个订单（订单聚合只保存UserID）
type User struct {
	ID        uint
	Username  string // 可选，<=50
	Email     string // 唯一，统一小写
	Password  string // bcrypt哈希值
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是HashPassword的结果
func NewUser(username, email, hashedPassword string) *User {
	now := time.Now()
	return &User{
		Username:  strings.TrimSpace(username),
		Email:     NormalizeEmail(email),
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeEmail 邮箱去空白并转小写，注册和登录都经过这里
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
