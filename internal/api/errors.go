package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误码定义
const (
	// 通用错误码
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	// 认证错误码
	ErrCodeSessionExpired = "ERR_SESSION_EXPIRED"

	// 资源错误码
	ErrCodeTaskNotFound    = "ERR_TASK_NOT_FOUND"
	ErrCodeCreditsNotFound = "ERR_CREDITS_NOT_FOUND"
	ErrCodeExportNotFound  = "ERR_EXPORT_NOT_FOUND"

	// 业务逻辑错误码
	ErrCodeMissingField    = "ERR_MISSING_FIELD"
	ErrCodeDuplicateFile   = "ERR_DUPLICATE_FILE"
	ErrCodeTaskFinished    = "ERR_TASK_FINISHED"
	ErrCodeTaskRunning     = "ERR_TASK_RUNNING"
	ErrCodeTaskOwnerChange = "ERR_TASK_OWNER_MISMATCH"
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// 常用错误响应快捷函数

// NotFound 404 资源不存在
func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

// Conflict 409 状态冲突
func Conflict(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusConflict, code, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable 503 服务不可用
func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// MissingField 缺少必填字段
func MissingField(c *gin.Context, field string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeMissingField, field+" is required", gin.H{"field": field})
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context, err error) {
	if err == nil {
		ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
		return
	}
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload", err.Error())
}
