package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/circuitbreaker"
	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// tombstone 失效标记的值（不是合法JSON，不会和图书数据混淆）
const tombstone = "-"

// DefaultTombstoneTTL 失效标记的存活时间
// 回填比失效晚到的读请求，只要在这段时间内到达都会被挡住
const DefaultTombstoneTTL = time.Minute

// BookCache 图书详情缓存（Cache-Aside）
// 设计说明：
// 1. 先查缓存，未命中再查存储并回填；修改和删除后写入失效标记
// 2. 回填使用SET NX：key上已有失效标记或数据时不覆盖，
//    读到旧记录的慢请求无法把它写回缓存
// 3. 所有Redis调用都经过熔断器，Redis故障时快速失败，由调用方降级为直接读存储
// 4. Key格式：book:{id}
type BookCache struct {
	client       *redis.Client
	ttl          time.Duration
	tombstoneTTL time.Duration
	breaker      *circuitbreaker.CircuitBreaker
}

// NewBookCache 创建图书缓存
func NewBookCache(client *redis.Client, ttl time.Duration, log *slog.Logger) *BookCache {
	breaker := circuitbreaker.New("redis-book-cache", circuitbreaker.Config{
		Timeout: 30 * time.Second,
		// 未命中不是故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("熔断器状态变化",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.SetGaugeVec(metrics.CircuitBreakerState, prometheus.Labels{"name": name}, float64(to))
		},
	})

	return &BookCache{client: client, ttl: ttl, tombstoneTTL: DefaultTombstoneTTL, breaker: breaker}
}

// Get 读取缓存，未命中返回(nil, false, nil)
func (c *BookCache) Get(ctx context.Context, id string) (*book.Book, bool, error) {
	var val []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		val, err = c.client.Get(ctx, bookKey(id)).Bytes()
		return err
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			countCache("miss")
			return nil, false, nil
		}
		countCache("error")
		return nil, false, fmt.Errorf("获取缓存失败: %w", err)
	}

	if string(val) == tombstone {
		countCache("miss")
		return nil, false, nil
	}

	var b book.Book
	if err := json.Unmarshal(val, &b); err != nil {
		countCache("error")
		return nil, false, fmt.Errorf("反序列化失败: %w", err)
	}

	countCache("hit")
	return &b, true, nil
}

// Set 回填缓存，key已存在（数据或失效标记）时跳过
func (c *BookCache) Set(ctx context.Context, b *book.Book) error {
	val, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}

	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.client.SetNX(ctx, bookKey(b.ID), val, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("设置缓存失败: %w", err)
	}
	return nil
}

// Delete 使缓存失效
// 无条件写入短期失效标记，覆盖已有数据，并阻止并发读请求回填旧记录
func (c *BookCache) Delete(ctx context.Context, id string) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, bookKey(id), tombstone, c.tombstoneTTL).Err()
	})
	if err != nil {
		return fmt.Errorf("删除缓存失败: %w", err)
	}
	return nil
}

// Check 熔断器打开时返回ErrOpenState，供健康检查上报缓存降级
func (c *BookCache) Check(_ context.Context) error {
	if c.breaker.State() == circuitbreaker.StateOpen {
		return circuitbreaker.ErrOpenState
	}
	return nil
}

func bookKey(id string) string {
	return "book:" + id
}

func countCache(result string) {
	metrics.IncCounterVec(metrics.BookCacheRequests, prometheus.Labels{"result": result})
}
