package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check 一个依赖组件的健康检查
// Optional组件失败只将整体状态标记为degraded，不影响HTTP状态码
type Check struct {
	Name     string
	Ping     func(ctx context.Context) error
	Optional bool
}

// HealthHandler 健康检查
type HealthHandler struct {
	checks  []Check
	timeout time.Duration
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 3 * time.Second}
}

// HealthResponse 健康检查结果
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Health 依次检查各组件，任一必需组件失败返回503
// @Summary      健康检查
// @Tags         系统
// @Produce      json
// @Success      200 {object} handler.HealthResponse
// @Failure      503 {object} handler.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	resp := HealthResponse{Status: "ok", Components: make(map[string]string, len(h.checks))}
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", slog.String("component", check.Name), slog.Any("error", err))
			if check.Optional {
				resp.Components[check.Name] = "degraded"
				if resp.Status == "ok" {
					resp.Status = "degraded"
				}
				continue
			}
			status = http.StatusServiceUnavailable
			resp.Status = "error"
			resp.Components[check.Name] = "unavailable"
			continue
		}
		resp.Components[check.Name] = "ok"
	}

	c.JSON(status, resp)
}
