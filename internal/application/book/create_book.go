package book

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// CreateBookUseCase 创建图书用例
// 设计说明:
// 1. 应用层负责用例编排,字段校验由领域服务完成
// 2. 创建成功后发布book.created事件
type CreateBookUseCase struct {
	bookService book.Service
	events      notifier
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(bookService book.Service, publisher EventPublisher, logger *slog.Logger) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookService: bookService,
		events:      notifier{publisher: publisher, logger: logger},
	}
}

// CreateBookRequest 创建请求DTO
// 数值与日期为nil表示请求中没有该字段
type CreateBookRequest struct {
	Title         string
	Author        string
	Category      string
	Price         *float64
	Rating        *float64
	PublishedDate *time.Time
}

// Execute 执行创建
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*book.Book, error) {
	ctx, span := tracing.StartSpan(ctx, "CreateBookUseCase.Execute")
	defer span.End()

	b, err := uc.bookService.CreateBook(ctx, book.Draft{
		Title:         req.Title,
		Author:        req.Author,
		Category:      req.Category,
		Price:         req.Price,
		Rating:        req.Rating,
		PublishedDate: req.PublishedDate,
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("book.id", b.ID))
	metrics.IncCounter(metrics.BooksCreatedTotal)
	uc.events.notify(ctx, EventBookCreated, b.ID, b)
	return b, nil
}
