package user

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.ErrUserNotFound

	// ErrEmailDuplicate 邮箱已被注册
	ErrEmailDuplicate = apperrors.ErrEmailDuplicate

	// ErrWeakPassword 密码长度不合法
	ErrWeakPassword = apperrors.ErrWeakPassword

	// ErrInvalidCredentials 邮箱不存在和密码错误使用同一个错误，避免暴露邮箱是否注册
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials
)
