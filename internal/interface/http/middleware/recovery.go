package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshelf/pkg/logger"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// Recovery 捕获panic，记录堆栈，返回500
// 响应体与其他未知错误一致，进程不退出
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				ctx := c.Request.Context()
				log.ErrorContext(ctx, "panic recovered",
					slog.Any("error", r),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("request_id", logger.RequestID(ctx)),
				)
				_ = c.Error(fmt.Errorf("panic: %v", r))
				code, body := response.Normalize(nil)
				c.AbortWithStatusJSON(code, body)
			}
		}()
		c.Next()
	}
}
