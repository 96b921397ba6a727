package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// bindJSON 绑定并校验请求体，失败时返回40901
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return apperrors.ErrBindError.WithMessage("参数错误: " + err.Error())
	}
	return nil
}

// parseID 解析路径参数中的正整数ID
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidParams.WithMessage("无效的" + name)
	}
	return uint(id), nil
}

// parseOptionalID 解析可选的查询参数，未传时返回0
func parseOptionalID(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidParams.WithMessage("无效的" + name)
	}
	return uint(id), nil
}
