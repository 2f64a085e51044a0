package util

import (
	"coursegen_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Success 成功响应，body 中的字段与 success: true 平铺返回
func Success(c *gin.Context, body gin.H) {
	out := gin.H{"success": true}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(http.StatusOK, out)
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "unauthenticated")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "internal server error")
}

// HandleError 记录错误日志并按错误分类返回
func HandleError(c *gin.Context, op string, err error, fields ...zap.Field) {
	status := StatusFor(err)
	fields = append(fields,
		zap.String("op", op),
		zap.String("kind", string(KindOf(err))),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed", fields...)
	} else {
		logger.Log.Warn("request rejected", fields...)
	}
	Error(c, status, PublicMessage(err))
}

// Response 成功响应结构（用于接口文档）
type Response struct {
	Success bool `json:"success"`
}

// ErrorResponse 错误响应结构（用于接口文档）
type ErrorResponse struct {
	Error string `json:"error"`
}
