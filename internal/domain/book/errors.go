package book

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrNoBooks 暂无图书
	ErrNoBooks = apperrors.New(apperrors.ErrCodeBookNotFound, "暂无图书")

	// ErrTitleDuplicate 书名已存在
	ErrTitleDuplicate = apperrors.New(apperrors.ErrCodeTitleDuplicate, "书名已存在")

	// ErrInvalidTitle 书名为空
	ErrInvalidTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")

	// ErrMissingField 作者或出版社为空
	ErrMissingField = apperrors.New(apperrors.ErrCodeInvalidParams, "作者和出版社不能为空")

	// ErrInvalidYear 出版年份不合法
	ErrInvalidYear = apperrors.New(apperrors.ErrCodeInvalidParams, "出版年份不能为负数")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInvalidGenre 未指定分类
	ErrInvalidGenre = apperrors.New(apperrors.ErrCodeInvalidParams, "必须指定图书分类")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
)
