package gormstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
)

// NewDB 创建GORM数据库连接（mysql | postgres | sqlite）
// 设计说明：
// 1. TranslateError把各驱动的唯一约束错误统一转换为gorm.ErrDuplicatedKey
// 2. 时间统一使用UTC并截断到毫秒（MySQL DATETIME(3)精度），各驱动行为一致
// 3. 连接成功后自动迁移表结构
func NewDB(ctx context.Context, cfg config.DatabaseConfig, debug bool, log *slog.Logger) (*gorm.DB, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 连接池配置
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if cfg.Driver == config.DriverSQLite && isMemoryDSN(cfg.Path) {
		// 每个:memory:连接都是独立的空库，只能用一个连接
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := Ping(ctx, db, cfg.ConnectTimeout); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	log.Info("数据库连接成功", slog.String("driver", cfg.Driver))
	return db, nil
}

func openDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return openSQLite(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("gormstore不支持驱动%q", cfg.Driver)
	}
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || dsn == "file::memory:"
}

// Ping 健康检查
func Ping(ctx context.Context, db *gorm.DB, timeout time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
	)
}

// =========================================
// 数据库模型（与领域实体分离）
// =========================================

// UserModel 用户表
type UserModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Nickname     string    `gorm:"size:50;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (UserModel) TableName() string {
	return "users"
}

// BookModel 图书表
// title+author联合索引支撑搜索，created_at支撑默认排序
// 时间戳由仓储维护（UpdatedAt需要严格递增，不能交给GORM自动填充）
type BookModel struct {
	ID            string    `gorm:"primaryKey;size:36"`
	Title         string    `gorm:"index:idx_books_search;size:255;not null"`
	Author        string    `gorm:"index:idx_books_search;size:255;not null"`
	Category      string    `gorm:"index;size:100;not null"`
	Price         float64   `gorm:"not null"`
	Rating        float64   `gorm:"index;not null"`
	PublishedDate time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"index;autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false"`
}

func (BookModel) TableName() string {
	return "books"
}
