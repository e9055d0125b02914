package logx

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config 对应 CLI 的日志开关。
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// ParseLevel 把级别名映射为 slog.Level；空串视为 info。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("未知日志级别：%q", s)
	}
}

// ValidFormat 报告 f 是否为支持的输出格式（空串视为 text）。
func ValidFormat(f string) bool {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// New 构造写到 w 的 logger。诊断输出只走这里（CLI 传 stderr），不污染 stdout。
// 非法级别回退为 info，非法格式回退为 text；校验由 config 负责。
func New(w io.Writer, cfg Config) *slog.Logger {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.ToLower(strings.TrimSpace(cfg.Format)) == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Discard 返回丢弃一切输出的 logger（调用方未注入 logger 时使用）。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
