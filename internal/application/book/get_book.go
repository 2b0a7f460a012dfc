package book

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// GetBookUseCase 图书详情用例(Cache-Aside)
// 1. 先查缓存,命中直接返回
// 2. 未命中查存储并回填
// 3. 缓存故障降级为直接查存储
type GetBookUseCase struct {
	bookService book.Service
	cache       BookCache
	logger      *slog.Logger
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(bookService book.Service, cache BookCache, logger *slog.Logger) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService, cache: cache, logger: logger}
}

// Execute 执行查询
func (uc *GetBookUseCase) Execute(ctx context.Context, id string) (*book.Book, error) {
	ctx, span := tracing.StartSpan(ctx, "GetBookUseCase.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("book.id", id))

	cached, ok, err := uc.cache.Get(ctx, id)
	if err != nil {
		uc.logger.WarnContext(ctx, "读取图书缓存失败", slog.String("book_id", id), slog.Any("error", err))
	}
	if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if err := uc.cache.Set(ctx, b); err != nil {
		uc.logger.WarnContext(ctx, "回填图书缓存失败", slog.String("book_id", id), slog.Any("error", err))
	}
	return b, nil
}
