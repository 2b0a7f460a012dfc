package user

import (
	"strings"
	"time"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码只保存bcrypt哈希值，序列化时忽略
// 2. 邮箱统一小写存储，作为登录名且全局唯一
// 3. 领域实体不依赖GORM/BSON tag（由infrastructure层映射）
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, nickname string) *User {
	return &User{
		Email:        NormalizeEmail(email),
		PasswordHash: hashedPassword,
		Nickname:     strings.TrimSpace(nickname),
	}
}

// NormalizeEmail 去除空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
