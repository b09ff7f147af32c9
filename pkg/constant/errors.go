/*
 * @Description: 领域错误定义
 * @Author: inkwell
 * @Date: 2026-03-04 09:12:40
 * @LastEditTime: 2026-07-08 13:29:17
 * @LastEditors: inkwell
 */
package constant

import (
	"errors"
	"fmt"
)

// 定义业务逻辑相关的标准错误分类，Handler 根据分类转换 HTTP 状态码
var (
	// ErrValidation 表示输入不合法，可以由 Handler 转换为 400
	ErrValidation = errors.New("请求参数不合法")

	// ErrForbidden 表示角色或归属不满足操作要求，可以由 Handler 转换为 403
	ErrForbidden = errors.New("操作禁止")

	// ErrNotFound 表示资源不存在，或前置资源不处于要求的状态，可以由 Handler 转换为 404
	ErrNotFound = errors.New("资源未找到")

	// ErrUnauthorized 表示未登录或凭证无效，可以由 Handler 转换为 401
	ErrUnauthorized = errors.New("未经授权的访问")

	// ErrInvalidToken 表示无效的令牌，可以由 Handler 转换为 401
	ErrInvalidToken = fmt.Errorf("%w: 无效或过期的令牌", ErrUnauthorized)

	// ErrInvalidCredentials 表示邮箱或密码错误，两种情况共用同一个错误，属于 ErrUnauthorized
	ErrInvalidCredentials = &DomainError{Kind: ErrUnauthorized, Message: "邮箱或密码错误"}

	// ErrInvalidPublicID 表示无效的公共ID，可以由 Handler 转换为 400
	ErrInvalidPublicID = &DomainError{Kind: ErrValidation, Message: "无效的公共ID"}

	// ErrDuplicate 表示唯一约束冲突（邮箱或昵称已被占用），属于 ErrValidation
	ErrDuplicate = &DomainError{Kind: ErrValidation, Message: "邮箱或昵称已被占用"}

	// ErrAccountBanned 表示账户已被封禁，属于 ErrForbidden
	ErrAccountBanned = &DomainError{Kind: ErrForbidden, Message: "您的账户已被封禁"}
)

// DomainError 携带面向调用方的提示信息，并通过 Unwrap 暴露错误分类。
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

// NewValidationError 创建一个参数校验错误
func NewValidationError(format string, args ...any) error {
	return &DomainError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NewForbiddenError 创建一个权限错误
func NewForbiddenError(format string, args ...any) error {
	return &DomainError{Kind: ErrForbidden, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError 创建一个资源不存在错误
func NewNotFoundError(format string, args ...any) error {
	return &DomainError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// IsDomainError 判断错误是否属于可以直接展示给调用方的业务错误
func IsDomainError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized)
}
