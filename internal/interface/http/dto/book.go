package dto

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// CreateBookRequest HTTP创建图书请求
// 字段规则由领域层校验(NewBook),这里只负责类型转换
// 数值用指针区分"未提供"和0
type CreateBookRequest struct {
	Title         string   `json:"title" example:"Dune"`
	Author        string   `json:"author" example:"Frank Herbert"`
	Category      string   `json:"category" example:"SciFi"`
	Price         *float64 `json:"price" example:"15"`
	Rating        *float64 `json:"rating" example:"4.5"`
	PublishedDate string   `json:"publishedDate" example:"1965-01-01"` // 2006-01-02或RFC3339
}

// ToCommand 转换为应用层请求
func (r CreateBookRequest) ToCommand() (appbook.CreateBookRequest, error) {
	cmd := appbook.CreateBookRequest{
		Title:    r.Title,
		Author:   r.Author,
		Category: r.Category,
		Price:    r.Price,
		Rating:   r.Rating,
	}
	if strings.TrimSpace(r.PublishedDate) != "" {
		d, err := book.ParseDate(r.PublishedDate)
		if err != nil {
			return cmd, err
		}
		cmd.PublishedDate = &d
	}
	return cmd, nil
}

// UpdateBookRequest HTTP部分更新请求
// 只有出现在请求体里的字段会被修改;id、createdAt等字段忽略
type UpdateBookRequest struct {
	Title         *string  `json:"title,omitempty" example:"Dune Messiah"`
	Author        *string  `json:"author,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Price         *float64 `json:"price,omitempty" example:"19.99"`
	Rating        *float64 `json:"rating,omitempty"`
	PublishedDate *string  `json:"publishedDate,omitempty" example:"1969-01-01"`
}

// ToCommand 转换为应用层请求
func (r UpdateBookRequest) ToCommand(id string) (appbook.UpdateBookRequest, error) {
	cmd := appbook.UpdateBookRequest{
		ID:       id,
		Title:    r.Title,
		Author:   r.Author,
		Category: r.Category,
		Price:    r.Price,
		Rating:   r.Rating,
	}
	if r.PublishedDate != nil {
		d, err := book.ParseDate(*r.PublishedDate)
		if err != nil {
			return cmd, err
		}
		cmd.PublishedDate = &d
	}
	return cmd, nil
}

// BookData 单条图书响应的data部分
type BookData struct {
	Book *book.Book `json:"book"`
}

// ParseListQuery 解析列表查询参数
// 格式错误的参数使用默认值而不是报错:
// - page: 非整数或<1 → 1
// - limit: 非整数或<1 → 10,超过100按100
// - rating: 非数字 → 不过滤
// - sortOrder: 只有asc是升序,其他一律desc
// - sortBy: 不可排序的字段 → createdAt
func ParseListQuery(q url.Values) appbook.ListBooksRequest {
	req := appbook.ListBooksRequest{
		Page:      readInt(q, "page", appbook.DefaultPage),
		Limit:     readInt(q, "limit", appbook.DefaultLimit),
		Author:    strings.TrimSpace(q.Get("author")),
		Category:  strings.TrimSpace(q.Get("category")),
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sortBy"),
		SortOrder: appbook.SortDesc,
	}

	if req.Page < 1 {
		req.Page = appbook.DefaultPage
	}
	if req.Limit < 1 {
		req.Limit = appbook.DefaultLimit
	}
	if req.Limit > appbook.MaxLimit {
		req.Limit = appbook.MaxLimit
	}
	if !book.IsSortable(req.SortBy) {
		req.SortBy = book.DefaultSortBy
	}
	if strings.EqualFold(q.Get("sortOrder"), appbook.SortAsc) {
		req.SortOrder = appbook.SortAsc
	}

	if s := strings.TrimSpace(q.Get("rating")); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			req.MinRating = &v
		}
	}
	return req
}

func readInt(q url.Values, key string, defaultValue int) int {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return v
}
