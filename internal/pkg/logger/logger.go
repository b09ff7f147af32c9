/*
 * @Description: 日志初始化
 * @Author: inkwell
 * @Date: 2026-03-02 10:00:53
 * @LastEditTime: 2026-05-17 08:44:30
 * @LastEditors: inkwell
 */

// Package logger 配置全局 slog 日志器。
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

type Config struct {
	Debug  bool
	JSON   bool      // 为 true 时输出 JSON，否则输出文本格式
	Writer io.Writer // 为空时写到 stdout
}

// Setup 创建日志器并设为 slog 的默认日志器。
// 调试模式下级别为 Debug 并记录源码位置。
func Setup(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}
	if cfg.Debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	slog.SetDefault(l)
	return l
}
