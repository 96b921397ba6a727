package order

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrNoOrders 一笔订单都没有
	ErrNoOrders = apperrors.New(apperrors.ErrCodeOrderNotFound, "暂无订单")

	// ErrEmptyItems 订单明细为空
	ErrEmptyItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrInvalidBookID 图书ID不合法
	ErrInvalidBookID = apperrors.New(apperrors.ErrCodeInvalidParams, "图书ID不合法")

	// ErrInvalidUser 用户ID不合法
	ErrInvalidUser = apperrors.New(apperrors.ErrCodeInvalidParams, "用户ID不合法")

	// ErrNotOwner 只能替自己下单
	ErrNotOwner = apperrors.New(apperrors.ErrCodeForbidden, "不能为其他用户下单")
)
