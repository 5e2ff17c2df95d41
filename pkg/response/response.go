// Package response 提供统一的 HTTP JSON 响应格式
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
		TraceID: logger.TraceIDFromContext(c.Request.Context()),
	})
}

// ErrorWithStatus 以指定 HTTP 状态码返回错误，errCode 为空时使用状态文本
func ErrorWithStatus(c *gin.Context, status int, message, errCode string) {
	if errCode == "" {
		errCode = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, Response{
		Code:    status,
		Message: message,
		Error:   errCode,
		TraceID: logger.TraceIDFromContext(c.Request.Context()),
	})
}
