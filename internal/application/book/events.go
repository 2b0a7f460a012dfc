package book

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// 事件路由键
const (
	EventBookCreated = "book.created"
	EventBookUpdated = "book.updated"
	EventBookDeleted = "book.deleted"
)

// BookEvent 图书领域事件
// 删除事件不携带Book
type BookEvent struct {
	Type       string     `json:"type"`
	BookID     string     `json:"bookId"`
	Book       *book.Book `json:"book,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// notifier 发布事件
// 事件是通知性质的，发布失败只记日志，不影响已经提交的修改
type notifier struct {
	publisher EventPublisher
	logger    *slog.Logger
}

func (n notifier) notify(ctx context.Context, eventType, id string, b *book.Book) {
	event := BookEvent{
		Type:       eventType,
		BookID:     id,
		Book:       b,
		OccurredAt: time.Now().UTC(),
	}
	if err := n.publisher.Publish(ctx, eventType, event); err != nil {
		n.logger.WarnContext(ctx, "发布图书事件失败",
			slog.String("event", eventType),
			slog.String("book_id", id),
			slog.Any("error", err),
		)
	}
}

// evict 删除缓存，失败只记日志（缓存TTL兜底）
func evict(ctx context.Context, cache BookCache, logger *slog.Logger, id string) {
	if err := cache.Delete(ctx, id); err != nil {
		logger.WarnContext(ctx, "删除图书缓存失败", slog.String("book_id", id), slog.Any("error", err))
	}
}
