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

// UpdateBookUseCase 部分更新用例
// 更新成功后删除缓存并发布book.updated事件
type UpdateBookUseCase struct {
	bookService book.Service
	cache       BookCache
	events      notifier
	logger      *slog.Logger
}

// NewUpdateBookUseCase 创建更新用例
func NewUpdateBookUseCase(bookService book.Service, cache BookCache, publisher EventPublisher, logger *slog.Logger) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookService: bookService,
		cache:       cache,
		events:      notifier{publisher: publisher, logger: logger},
		logger:      logger,
	}
}

// UpdateBookRequest 更新请求DTO,nil字段保持不变
type UpdateBookRequest struct {
	ID            string
	Title         *string
	Author        *string
	Category      *string
	Price         *float64
	Rating        *float64
	PublishedDate *time.Time
}

// Execute 执行更新
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*book.Book, error) {
	ctx, span := tracing.StartSpan(ctx, "UpdateBookUseCase.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("book.id", req.ID))

	patch := book.Patch{
		Title:         req.Title,
		Author:        req.Author,
		Category:      req.Category,
		Price:         req.Price,
		Rating:        req.Rating,
		PublishedDate: req.PublishedDate,
	}
	// 空补丁同样会刷新updatedAt
	span.SetAttributes(attribute.Bool("book.patch_empty", patch.IsEmpty()))

	b, err := uc.bookService.UpdateBook(ctx, req.ID, patch)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	evict(ctx, uc.cache, uc.logger, b.ID)
	metrics.IncCounter(metrics.BooksUpdatedTotal)
	uc.events.notify(ctx, EventBookUpdated, b.ID, b)
	return b, nil
}
