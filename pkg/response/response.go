package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码（0表示成功），方便客户端判断错误类型
// 2. StatusCode与HTTP状态行一致，方便只解析body的客户端
// 3. Data是业务数据，失败时为null
type Response struct {
	Success    bool        `json:"success"`
	Code       int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	StatusCode int         `json:"status_code"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, "success", data)
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, "created", data)
}

// SuccessWithMessage 自定义提示信息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, message, data)
}

func write(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success:    true,
		Code:       0,
		Message:    message,
		Data:       data,
		StatusCode: status,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	resp, err := h.createOrderUC.Execute(ctx, req)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.StatusCode()

	// 内部错误细节只进日志，客户端只看到Message
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().
			Err(appErr.Err).
			Int("code", appErr.Code).
			Str("path", c.FullPath()).
			Msg(appErr.Message)
	}

	c.JSON(status, Response{
		Success:    false,
		Code:       appErr.Code,
		Message:    appErr.Message,
		Data:       nil,
		StatusCode: status,
	})
}

// Abort 错误响应并终止后续中间件/处理器（中间件使用）
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
