package dto

import (
	appuser "github.com/xiebiao/bookshelf/internal/application/user"
)

// RegisterRequest HTTP层注册请求
// 说明：binding只检查必填和格式，密码强度、昵称长度由领域服务校验
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required" example:"passw0rd!"`
	Nickname string `json:"nickname" binding:"required" example:"reader"`
}

// LoginRequest HTTP层登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"reader@example.com"`
	Password string `json:"password" binding:"required" example:"passw0rd!"`
}

// RefreshRequest 刷新Token请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserData 注册响应的data部分
type UserData struct {
	User *appuser.UserInfo `json:"user"`
}

// TokensData 刷新响应的data部分
type TokensData struct {
	Tokens *appuser.TokenResponse `json:"tokens"`
}
