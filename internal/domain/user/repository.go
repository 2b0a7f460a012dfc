package user

import (
	"context"
)

// Repository 用户仓储接口
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在gormstore/mongostore
// 3. 邮箱重复返回apperrors.ErrDuplicateKey，不存在返回ErrUserNotFound
type Repository interface {
	// Create 创建用户，由存储分配ID和时间戳
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail 根据邮箱查找用户（邮箱已规范化为小写）
	FindByEmail(ctx context.Context, email string) (*User, error)
}
