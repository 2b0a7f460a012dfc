package main

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	appuser "github.com/xiebiao/bookshelf/internal/application/user"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/jwt"
	"github.com/xiebiao/bookshelf/pkg/mq"
)

// 自定义Provider：需要从Config中提取参数，或者按开关返回不同实现

func provideStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*persistence.Store, func(), error) {
	open := func(ctx context.Context) (*persistence.Store, error) {
		return persistence.Open(ctx, cfg.Database, cfg.Server.Mode == "debug", log)
	}
	store, err := connectStore(ctx, open, cfg.Database.ConnectRetries, cfg.Database.RetryDelay, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Warn("关闭存储失败", slog.Any("error", err))
		}
	}
	return store, cleanup, nil
}

func provideBookRepository(store *persistence.Store) book.Repository {
	return store.Books
}

func provideUserRepository(store *persistence.Store) user.Repository {
	return store.Users
}

// provideRedis 未启用redis时返回nil，下游各自降级
func provideRedis(ctx context.Context, cfg *config.Config, log *slog.Logger) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideBookCache(cfg *config.Config, client *goredis.Client, log *slog.Logger) appbook.BookCache {
	if client == nil || !cfg.Cache.Enabled {
		return appbook.NopCache{}
	}
	return redis.NewBookCache(client, cfg.Cache.BookTTL, log)
}

func provideSessionStore(client *goredis.Client) appuser.SessionStore {
	if client == nil {
		return appuser.NopSessionStore{}
	}
	return redis.NewSessionStore(client)
}

// provideBlacklist 未启用redis时返回nil接口，认证中间件跳过黑名单检查
func provideBlacklist(client *goredis.Client) middleware.TokenBlacklist {
	if client == nil {
		return nil
	}
	return redis.NewSessionStore(client)
}

func providePublisher(cfg *config.Config, log *slog.Logger) (appbook.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return appbook.NopPublisher{}, func() {}, nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, log)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() { _ = publisher.Close() }, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideLoginUseCase 会话有效期与Refresh Token一致
func provideLoginUseCase(
	cfg *config.Config,
	userService user.Service,
	jwtManager *jwt.Manager,
	sessions appuser.SessionStore,
	log *slog.Logger,
) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(userService, jwtManager, sessions, cfg.JWT.RefreshTokenExpire, log)
}

// provideRateLimiter 未启用时返回nil
func provideRateLimiter(cfg *config.Config) (*middleware.RateLimiter, func()) {
	if !cfg.RateLimit.Enabled {
		return nil, func() {}
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	return limiter, limiter.Stop
}

func provideHealthHandler(store *persistence.Store, client *goredis.Client, cache appbook.BookCache) *handler.HealthHandler {
	checks := []handler.Check{{Name: "store", Ping: store.Ping}}
	if client != nil {
		checks = append(checks, handler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}
	// 缓存熔断只是降级，读请求仍可回源
	if c, ok := cache.(*redis.BookCache); ok {
		checks = append(checks, handler.Check{Name: "book_cache", Ping: c.Check, Optional: true})
	}
	return handler.NewHealthHandler(checks...)
}
