package book

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// DeleteBookUseCase 删除图书用例
type DeleteBookUseCase struct {
	bookService book.Service
	cache       BookCache
	events      notifier
	logger      *slog.Logger
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service, cache BookCache, publisher EventPublisher, logger *slog.Logger) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
		cache:       cache,
		events:      notifier{publisher: publisher, logger: logger},
		logger:      logger,
	}
}

// Execute 执行删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "DeleteBookUseCase.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("book.id", id))

	if err := uc.bookService.DeleteBook(ctx, id); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	evict(ctx, uc.cache, uc.logger, id)
	metrics.IncCounter(metrics.BooksDeletedTotal)
	uc.events.notify(ctx, EventBookDeleted, id, nil)
	return nil
}
