package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(gormstore、mongostore)
// 2. 记录不存在时返回ErrBookNotFound,唯一约束冲突返回apperrors.ErrDuplicateKey
// 3. 其他存储错误用apperrors.Wrap包装,避免驱动错误信息泄露给客户端
type Repository interface {
	// Create 插入图书,由存储分配ID并设置CreatedAt/UpdatedAt
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id string) (*Book, error)

	// Find 按条件、排序、skip/limit查询
	Find(ctx context.Context, q Query) ([]*Book, error)

	// Count 统计匹配条件的记录总数(忽略skip/limit)
	Count(ctx context.Context, f Filter) (int64, error)

	// Update 原子地合并补丁、刷新UpdatedAt并返回更新后的记录
	Update(ctx context.Context, id string, patch Patch) (*Book, error)

	// Delete 物理删除
	Delete(ctx context.Context, id string) error
}
