package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"成功", 0, http.StatusOK},
		{"库存不足", ErrCodeInsufficientStock, http.StatusBadRequest},
		{"参数错误", ErrCodeInvalidParams, http.StatusBadRequest},
		{"绑定失败", ErrCodeBindError, http.StatusBadRequest},
		{"未登录", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"凭证错误", ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{"无权限", ErrCodeForbidden, http.StatusForbidden},
		{"限流", ErrCodeTooManyRequests, http.StatusTooManyRequests},
		{"图书不存在", ErrCodeBookNotFound, http.StatusNotFound},
		{"订单不存在", ErrCodeOrderNotFound, http.StatusNotFound},
		{"邮箱重复", ErrCodeEmailDuplicate, http.StatusConflict},
		{"分类重复", ErrCodeGenreDuplicate, http.StatusConflict},
		{"内部错误", ErrCodeInternal, http.StatusInternalServerError},
		{"数据库错误", ErrCodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestAppError_Is(t *testing.T) {
	derived := ErrUserNotFound.WithMessage("用户 7 不存在")
	assert.True(t, errors.Is(derived, ErrUserNotFound))
	assert.False(t, errors.Is(derived, ErrNotFound))

	wrapped := fmt.Errorf("查询失败: %w", derived)
	assert.True(t, errors.Is(wrapped, ErrUserNotFound))
}

func TestGetAppError(t *testing.T) {
	raw := errors.New("connection refused")

	appErr := GetAppError(raw)
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, raw)
	assert.True(t, IsInternal(raw))

	assert.Same(t, ErrForbidden, GetAppError(ErrForbidden))
	assert.False(t, IsInternal(ErrForbidden))
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "[40104] 无权限访问", ErrForbidden.Error())
	assert.Equal(t, "[50000] 保存失败: boom", Wrap(errors.New("boom"), "保存失败").Error())
}

func TestAppError_WithCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ErrRedisError.WithCause(cause).WithMessage("检查黑名单失败")

	assert.ErrorIs(t, err, ErrRedisError)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "检查黑名单失败", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode())
	assert.Nil(t, ErrRedisError.Err, "预定义错误不会被修改")
}
