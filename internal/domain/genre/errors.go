package genre

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 分类领域错误定义
var (
	// ErrGenreNotFound 分类不存在
	ErrGenreNotFound = apperrors.New(apperrors.ErrCodeGenreNotFound, "分类不存在")

	// ErrNoGenres 暂无分类
	ErrNoGenres = apperrors.New(apperrors.ErrCodeGenreNotFound, "暂无分类")

	// ErrGenreDuplicate 分类名已存在
	ErrGenreDuplicate = apperrors.New(apperrors.ErrCodeGenreDuplicate, "分类名称已存在")

	// ErrInvalidName 分类名称长度不合法
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "分类名称长度应为2-50个字符")

	// ErrGenreInUse 分类下仍有图书，不能删除
	ErrGenreInUse = apperrors.New(apperrors.ErrCodeGenreInUse, "该分类下仍有图书，无法删除")
)
