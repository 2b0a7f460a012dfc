package user

import (
	"context"
	"time"
)

// SessionStore 会话与Token黑名单（Redis实现见persistence/redis.SessionStore）
type SessionStore interface {
	SaveSession(ctx context.Context, userID string, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID string) error
	HasSession(ctx context.Context, userID string) (bool, error)
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
}

// NopSessionStore 未启用Redis时使用：登出只是客户端丢弃Token
type NopSessionStore struct{}

func (NopSessionStore) SaveSession(context.Context, string, map[string]interface{}, time.Duration) error {
	return nil
}
func (NopSessionStore) DeleteSession(context.Context, string) error                 { return nil }
func (NopSessionStore) HasSession(context.Context, string) (bool, error)            { return true, nil }
func (NopSessionStore) AddToBlacklist(context.Context, string, time.Duration) error { return nil }
