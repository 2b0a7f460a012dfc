package book

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务负责业务规则校验(NewBook/Patch.Validate),仓储只负责持久化
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// CreateBook 校验并创建图书
	CreateBook(ctx context.Context, draft Draft) (*Book, error)

	// GetBook 根据ID获取图书
	GetBook(ctx context.Context, id string) (*Book, error)

	// ListBooks 查询一页图书,同时返回匹配总数
	ListBooks(ctx context.Context, q Query) ([]*Book, int64, error)

	// UpdateBook 部分更新
	UpdateBook(ctx context.Context, id string, patch Patch) (*Book, error)

	// DeleteBook 删除图书
	DeleteBook(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateBook(ctx context.Context, draft Draft) (*Book, error) {
	b, err := NewBook(draft)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBook(ctx context.Context, id string) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 分页查询和计数互不依赖,并发执行
// 任一失败都会取消另一个
func (s *service) ListBooks(ctx context.Context, q Query) ([]*Book, int64, error) {
	if !IsSortable(q.SortBy) {
		q.SortBy = DefaultSortBy
	}

	var (
		books []*Book
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		books, err = s.repo.Find(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, q.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if books == nil {
		books = []*Book{}
	}
	return books, total, nil
}

func (s *service) UpdateBook(ctx context.Context, id string, patch Patch) (*Book, error) {
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *service) DeleteBook(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
