/*
 * @Description: 统一响应结构
 * @Author: inkwell
 * @Date: 2026-03-02 14:28:37
 * @LastEditTime: 2026-07-08 13:33:02
 * @LastEditors: inkwell
 */
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-cms/inkwell/pkg/constant"
)

// Response 是统一的API返回结构体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// debugMode 为 true 时，500 响应携带原始错误信息
var debugMode bool

// SetDebug 由启动流程根据 System.Debug 设置
func SetDebug(debug bool) {
	debugMode = debug
}

// Success 成功响应
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// SuccessWithStatus 成功响应，但允许自定义 HTTP 状态码。
// 这对于返回 201 Created 或 202 Accepted 等状态非常有用。
func SuccessWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// StatusOf 把业务错误分类映射为 HTTP 状态码，无法识别的错误一律为 500
func StatusOf(err error) int {
	switch {
	case errors.Is(err, constant.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, constant.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, constant.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, constant.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// FailWithError 根据错误分类返回失败响应。
// 业务错误直接展示其信息；其余错误记录日志，并只返回通用提示。
func FailWithError(c *gin.Context, err error) {
	code := StatusOf(err)
	if code != http.StatusInternalServerError {
		Fail(c, code, err.Error())
		return
	}

	slog.ErrorContext(c.Request.Context(), "请求处理失败",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	message := "服务器内部错误"
	if debugMode {
		message = err.Error()
	}
	Fail(c, code, message)
}
