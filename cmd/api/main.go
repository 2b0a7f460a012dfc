package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence"
	"github.com/xiebiao/bookshelf/pkg/logger"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// @title                       Bookshelf API
// @version                     1.0
// @description                 需要认证的图书CRUD服务
// @host                        localhost:3000
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 格式：Bearer {token}
func main() {
	if err := run(); err != nil {
		slog.Error("服务退出", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	// 2. 日志
	log, closeLog, err := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cfg.Log.Output,
		AddSource: cfg.Log.EnableCaller,
	})
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(log)

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.InitMetrics()

	// 3. 追踪（可选）
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(ctx, tracing.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Environment: cfg.Server.Mode,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			return fmt.Errorf("初始化追踪失败: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("flush追踪数据失败", slog.Any("error", err))
			}
		}()
	}

	// 4. 组装依赖（存储连接带重试，连上之前不会开始监听）
	app, cleanup, err := InitializeApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	return serve(ctx, app.Server, cfg.Server.ShutdownTimeout, log)
}

// App 启动所需的顶层对象
type App struct {
	Server *http.Server
}

func newApp(server *http.Server) *App {
	return &App{Server: server}
}

func newServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// serve 监听直到ctx取消，然后在timeout内优雅关闭
func serve(ctx context.Context, srv *http.Server, timeout time.Duration, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP服务启动", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("收到退出信号，开始优雅关闭", slog.Duration("timeout", timeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭HTTP服务失败: %w", err)
	}
	log.Info("HTTP服务已关闭")
	return nil
}

// storeOpener 单次连接存储
type storeOpener func(ctx context.Context) (*persistence.Store, error)

// connectStore 按固定间隔重试连接存储，最多attempts次
func connectStore(ctx context.Context, open storeOpener, attempts int, delay time.Duration, log *slog.Logger) (*persistence.Store, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		store, err := open(ctx)
		if err == nil {
			metrics.IncCounterVec(metrics.StoreConnectAttempts, prometheus.Labels{"result": "success"})
			return store, nil
		}
		lastErr = err
		metrics.IncCounterVec(metrics.StoreConnectAttempts, prometheus.Labels{"result": "failure"})

		if attempt == attempts {
			break
		}
		log.Warn("连接存储失败，稍后重试",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	log.Error("连接存储失败，放弃重试", slog.Int("attempts", attempts), slog.Any("error", lastErr))
	return nil, fmt.Errorf("连接存储失败（共尝试%d次）: %w", attempts, lastErr)
}
