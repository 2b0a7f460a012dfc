package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/logger"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"  // 4xx：客户端问题
	StatusError   = "error" // 5xx：服务端问题
)

// Response 成功响应结构
// 删除等无返回数据的接口，data固定为null
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// ErrorResponse 失败响应结构
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: StatusSuccess, Data: data})
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Status: StatusSuccess, Data: data})
}

// Error 错误响应（统一出口）
// 用法：
//
//	book, err := uc.Execute(ctx, req)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	code, body := Normalize(err)

	// 5xx的详细错误只写日志，不返回给客户端
	if code >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		slog.ErrorContext(ctx, "request failed",
			slog.String("request_id", logger.RequestID(ctx)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(code, body)
}

// Fail 直接返回指定状态码与消息（路由不存在等框架级错误）
func Fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Status: statusFor(code), Message: message})
}

// Normalize 把任意错误归一化为HTTP状态码和错误响应体
// 分类优先级：
// 1. 业务代码显式抛出的错误（NotFound/Unauthorized/New）：使用自带状态码和消息
// 2. 校验错误：400，透传消息
// 3. 唯一约束冲突：400，固定消息
// 4. Token无效：401
// 5. Token过期：401
// 6. 其他：500，固定通用消息
func Normalize(err error) (int, ErrorResponse) {
	if err == nil {
		return internal()
	}

	// 非AppError统一归为Internal
	appErr := apperrors.GetAppError(err)

	switch appErr.Kind {
	case apperrors.KindValidation:
		return reply(http.StatusBadRequest, appErr.Message)
	case apperrors.KindDuplicate:
		return reply(http.StatusBadRequest, apperrors.ErrDuplicateKey.Message)
	case apperrors.KindInvalidToken:
		return reply(http.StatusUnauthorized, apperrors.ErrInvalidToken.Message)
	case apperrors.KindTokenExpired:
		return reply(http.StatusUnauthorized, apperrors.ErrTokenExpired.Message)
	case apperrors.KindOperational, apperrors.KindNotFound, apperrors.KindUnauthorized:
		if appErr.Code < http.StatusBadRequest || appErr.Code > 599 {
			return internal()
		}
		return reply(appErr.Code, appErr.Message)
	default:
		return internal()
	}
}

func internal() (int, ErrorResponse) {
	return reply(apperrors.ErrInternal.Code, apperrors.ErrInternal.Message)
}

func reply(code int, message string) (int, ErrorResponse) {
	return code, ErrorResponse{Status: statusFor(code), Message: message}
}

func statusFor(code int) string {
	if code >= http.StatusBadRequest && code < http.StatusInternalServerError {
		return StatusFail
	}
	return StatusError
}

// =========================================
// 分页元数据
// =========================================

// Pagination 分页元数据
type Pagination struct {
	Total int64 `json:"total"` // 匹配的总记录数（忽略skip/limit）
	Page  int   `json:"page"`  // 当前页码
	Pages int   `json:"pages"` // 总页数 = ceil(total/limit)
}

// NewPagination 创建分页元数据
func NewPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(total) / limit
		if int(total)%limit != 0 {
			pages++
		}
	}

	return Pagination{
		Total: total,
		Page:  page,
		Pages: pages,
	}
}
