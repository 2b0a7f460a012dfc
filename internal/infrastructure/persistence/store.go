// Package persistence 按配置选择存储实现
//
// mongodb走mongostore，mysql/postgres/sqlite走gormstore，
// 上层只依赖book.Repository和user.Repository。
package persistence

import (
	"context"
	"log/slog"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/gormstore"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mongostore"
)

// Store 已连接的存储
type Store struct {
	Driver string
	Books  book.Repository
	Users  user.Repository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open 连接存储（单次尝试，重试由启动流程负责）
func Open(ctx context.Context, cfg config.DatabaseConfig, debug bool, log *slog.Logger) (*Store, error) {
	if cfg.Driver == config.DriverMongoDB {
		client, db, err := mongostore.Connect(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: cfg.Driver,
			Books:  mongostore.NewBookRepository(db),
			Users:  mongostore.NewUserRepository(db),
			ping: func(ctx context.Context) error {
				return mongostore.Ping(ctx, client, cfg.ConnectTimeout)
			},
			close: client.Disconnect,
		}, nil
	}

	db, err := gormstore.NewDB(ctx, cfg, debug, log)
	if err != nil {
		return nil, err
	}
	return &Store{
		Driver: cfg.Driver,
		Books:  gormstore.NewBookRepository(db),
		Users:  gormstore.NewUserRepository(db),
		ping: func(ctx context.Context) error {
			return gormstore.Ping(ctx, db, cfg.ConnectTimeout)
		},
		close: func(context.Context) error {
			return gormstore.Close(db)
		},
	}, nil
}

// Ping 健康检查
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close 释放连接
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
