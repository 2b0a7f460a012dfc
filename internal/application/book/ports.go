package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// BookCache 图书详情缓存（Redis实现见persistence/redis.BookCache）
// Get未命中返回(nil, false, nil)
type BookCache interface {
	Get(ctx context.Context, id string) (*book.Book, bool, error)
	Set(ctx context.Context, b *book.Book) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher 领域事件发布（RabbitMQ实现见pkg/mq.Publisher）
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// NopCache 未启用缓存时使用，每次都未命中
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*book.Book, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, *book.Book) error                 { return nil }
func (NopCache) Delete(context.Context, string) error                  { return nil }

// NopPublisher 未启用消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
