package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
// 错误归一化（response.Normalize）只依据Kind决定HTTP状态码与对外消息，
// 不解析错误字符串。
type Kind int

const (
	KindInternal     Kind = iota // 未分类错误，对外只返回通用提示
	KindOperational              // 业务代码显式抛出，自带状态码与消息
	KindValidation               // 参数/字段校验失败
	KindNotFound                 // 资源不存在
	KindDuplicate                // 唯一约束冲突
	KindInvalidToken             // Token无效
	KindTokenExpired             // Token过期
	KindUnauthorized             // 未认证
)

func (k Kind) String() string {
	switch k {
	case KindOperational:
		return "operational"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindInvalidToken:
		return "invalid_token"
	case KindTokenExpired:
		return "token_expired"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// AppError 自定义应用错误
// 设计说明：
// 1. Kind决定错误归类，Code是最终的HTTP状态码
// 2. Message是可以返回给客户端的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Kind    Kind   `json:"-"`
	Code    int    `json:"code"`    // HTTP状态码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建业务错误（携带自己的状态码和消息）
func New(code int, message string) *AppError {
	return &AppError{
		Kind:    KindOperational,
		Code:    code,
		Message: message,
	}
}

// Validation 创建校验错误（400）
func Validation(message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NotFound 创建资源不存在错误（404）
func NotFound(message string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    http.StatusNotFound,
		Message: message,
	}
}

// Unauthorized 创建未认证错误（401）
func Unauthorized(message string) *AppError {
	return &AppError{
		Kind:    KindUnauthorized,
		Code:    http.StatusUnauthorized,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为内部错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// =========================================
// 预定义错误（避免每次都New，用errors.Is比较）
// =========================================

var (
	ErrInternal = &AppError{Kind: KindInternal, Code: http.StatusInternalServerError, Message: "Something went wrong"}

	ErrDuplicateKey = &AppError{Kind: KindDuplicate, Code: http.StatusBadRequest, Message: "Duplicate field value entered"}

	// 认证授权
	ErrUnauthorized    = Unauthorized("Authentication required")
	ErrInvalidToken    = &AppError{Kind: KindInvalidToken, Code: http.StatusUnauthorized, Message: "Invalid token"}
	ErrTokenExpired    = &AppError{Kind: KindTokenExpired, Code: http.StatusUnauthorized, Message: "Token expired"}
	ErrTokenRevoked    = Unauthorized("Token has been revoked")
	ErrInvalidPassword = Unauthorized("Invalid email or password")

	ErrInvalidParams   = Validation("Invalid request parameters")
	ErrTooManyRequests = New(http.StatusTooManyRequests, "Too many requests")
)

// =========================================
// 辅助函数
// =========================================

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "unclassified error")
}

// IsKind 判断错误链中的AppError是否属于指定分类
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
