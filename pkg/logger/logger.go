// Package logger 基于log/slog构建结构化日志
//
// 使用示例：
//
//	log, cleanup, err := logger.New(logger.Options{Level: "info", Format: "json", Output: "stdout"})
//	if err != nil { ... }
//	defer cleanup()
//	slog.SetDefault(log)
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options 日志配置
type Options struct {
	Level     string // debug | info | warn | error
	Format    string // console | text | json
	Output    string // stdout | stderr | /path/to/file
	AddSource bool
}

// New 创建slog.Logger
// 返回的cleanup用于关闭日志文件（输出到stdout/stderr时为空操作）
func New(opts Options) (*slog.Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w       io.Writer
		cleanup = func() {}
	)
	switch opts.Output {
	case "", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		cleanup = func() { _ = f.Close() }
	}

	return slog.New(newHandler(w, opts.Format, &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.AddSource,
	})), cleanup, nil
}

func newHandler(w io.Writer, format string, ho *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}

// ParseLevel 解析日志级别，空字符串视为info
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

type requestIDKey struct{}

// WithRequestID 把请求ID放入context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID 从context取出请求ID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
