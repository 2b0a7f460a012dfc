package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/response"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// 分页默认值
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// 排序方向
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. 支持按作者/分类/最低评分过滤,search同时匹配标题和作者
// 2. 支持分页与排序,返回匹配总数和总页数
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page      int      // 页码(从1开始)
	Limit     int      // 每页数量
	Author    string   // 作者子串
	Category  string   // 分类子串
	Search    string   // 标题或作者子串
	MinRating *float64 // 最低评分
	SortBy    string   // 排序字段(JSON字段名)
	SortOrder string   // asc | desc
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	Books      []*book.Book        `json:"books"`
	Pagination response.Pagination `json:"pagination"`
}

// Execute 执行列表查询用例
// 学习要点:
// 1. 参数默认值处理(page默认1, limit默认10, 最大100)
// 2. skip = (page-1)*limit
// 3. pages = ceil(total/limit)
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "ListBooksUseCase.Execute")
	defer span.End()

	// 1. 参数默认值与范围限制
	if req.Page < 1 {
		req.Page = DefaultPage
	}
	if req.Limit < 1 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	if !book.IsSortable(req.SortBy) {
		req.SortBy = book.DefaultSortBy
	}

	// 2. 构建查询
	q := book.Query{
		Filter: book.Filter{
			Author:    req.Author,
			Category:  req.Category,
			Search:    req.Search,
			MinRating: req.MinRating,
		},
		SortBy: req.SortBy,
		Desc:   req.SortOrder != SortAsc,
		Skip:   (req.Page - 1) * req.Limit,
		Limit:  req.Limit,
	}

	// 3. 查询
	books, total, err := uc.bookService.ListBooks(ctx, q)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("books.total", total),
		attribute.Int("books.page", req.Page),
	)

	return &ListBooksResponse{
		Books:      books,
		Pagination: response.NewPagination(total, req.Page, req.Limit),
	}, nil
}
