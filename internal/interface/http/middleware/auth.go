package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/jwt"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// Context中保存认证信息的key
const (
	ctxUserID      = "user_id"
	ctxClaims      = "claims"
	ctxAccessToken = "access_token"
)

// TokenBlacklist Token黑名单（redis.SessionStore实现）
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 验证Token有效性
// 3. 检查Token黑名单
// 4. 将用户信息注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
// blacklist为nil时不检查黑名单（未启用Redis）
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	books := r.Group("/api/books")
//	books.Use(authMiddleware.RequireAuth())
//
// 认证失败时在访问存储之前就返回401
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从Header提取Token
		// 格式：Authorization: Bearer <token>
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			return
		}

		// 2. 验证Token并解析Claims（自动区分ErrTokenExpired、ErrInvalidToken）
		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err)
			return
		}

		// 3. 检查Token是否在黑名单中（用户已登出）
		if m.blacklist != nil {
			revoked, err := m.blacklist.IsInBlacklist(c.Request.Context(), tokenString)
			if err != nil {
				response.Error(c, err)
				return
			}
			if revoked {
				response.Error(c, apperrors.ErrTokenRevoked)
				return
			}
		}

		// 4. 将用户信息注入到Context
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxClaims, claims)
		c.Set(ctxAccessToken, tokenString)

		c.Next()
	}
}

// bearerToken 解析Authorization头，scheme不区分大小写
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 从Context获取当前登录用户ID，未登录返回空串
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetClaims 从Context获取已验证的Claims
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// GetAccessToken 从Context获取当前请求的Access Token（登出时拉黑）
func GetAccessToken(c *gin.Context) string {
	return c.GetString(ctxAccessToken)
}
