package types

import (
	"errors"
	"net/http"
)

// 领域错误哨兵，service 层用 fmt.Errorf("%w: ...") 包装附加上下文，
// handle 层用 HTTPStatus 映射到状态码.
var (
	// ErrNotFound 目标不存在，或对请求方不可见.
	ErrNotFound = errors.New("not found")
	// ErrForbidden 已认证但权限不足.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized 未认证或会话失效.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput 请求参数非法.
	ErrInvalidInput = errors.New("invalid input")
	// ErrQuotaExceeded 超出存储配额.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrConflict 与当前状态冲突（循环移动、重名、重复用户名等）.
	ErrConflict = errors.New("conflict")
	// ErrExpired 分享链接已过期.
	ErrExpired = errors.New("expired")
	// ErrGone 分享链接已被撤销.
	ErrGone = errors.New("gone")
)

// HTTPStatus 将领域错误映射为 HTTP 状态码，未识别的错误视为 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrExpired):
		return http.StatusGone
	case errors.Is(err, ErrGone):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
