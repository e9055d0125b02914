package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/John-Robertt/nifcheck/internal/infra/logx"
	"github.com/John-Robertt/nifcheck/internal/lookup"
	"github.com/John-Robertt/nifcheck/internal/nif"
)

const (
	// ErrCodeMissingNIF 表示没有给出待查询的 NIF。
	ErrCodeMissingNIF = "missing_nif"
	// ErrCodeInvalid 表示某个参数值不合法。
	ErrCodeInvalid = "config_invalid"
)

// CLIArgs 是 CLI 原样收集的参数（尚未校验），并保留“是否显式指定”的信息。
// 本工具没有配置文件、不读环境变量：所有配置只来自命令行。
type CLIArgs struct {
	NIF string

	BaseURL    string
	BaseURLSet bool

	ProxyURL  string
	Timeout   string // time.ParseDuration 格式，例如 "10s"
	UserAgent string

	Offline bool
	JSON    bool
	Verbose bool

	LogFormat string
}

// Effective 是合并默认值并校验后的最终配置（实现层直接消费）。
type Effective struct {
	// NIF 已做 nif.Normalize（去掉 PT 前缀与分隔符），但不保证校验位正确。
	NIF string

	BaseURL   string
	ProxyURL  string
	Timeout   time.Duration
	UserAgent string

	Offline bool
	JSON    bool

	LogLevel  string
	LogFormat string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Flag string // 出错的参数名（例如 --base-url）；可为空
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingNIF:
		return fmt.Sprintf("%s：缺少 NIF 参数", e.Code)
	case ErrCodeInvalid:
		if e.Flag != "" && e.Err != nil {
			return fmt.Sprintf("%s：%s 无效：%v", e.Code, e.Flag, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Resolve 校验 CLI 参数并补齐默认值。
//
// 默认值（固定）：
// - base url：lookup.DefaultBaseURL
// - timeout：0（不设总超时）
// - 日志：info + text；--verbose 时 debug
func Resolve(cli CLIArgs) (Effective, error) {
	id := nif.Normalize(cli.NIF)
	if id == "" {
		return Effective{}, &Error{Code: ErrCodeMissingNIF}
	}

	baseURL := lookup.DefaultBaseURL
	if cli.BaseURLSet {
		baseURL = strings.TrimSpace(cli.BaseURL)
		if err := validateHTTPURL(baseURL); err != nil {
			return Effective{}, &Error{Code: ErrCodeInvalid, Flag: "--base-url", Err: err}
		}
	}

	proxyURL := strings.TrimSpace(cli.ProxyURL)
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return Effective{}, &Error{Code: ErrCodeInvalid, Flag: "--proxy", Err: err}
		}
	}

	var timeout time.Duration
	if s := strings.TrimSpace(cli.Timeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Effective{}, &Error{Code: ErrCodeInvalid, Flag: "--timeout", Err: err}
		}
		if d < 0 {
			return Effective{}, &Error{Code: ErrCodeInvalid, Flag: "--timeout", Err: fmt.Errorf("不能为负数：%s", d)}
		}
		timeout = d
	}

	logFormat := strings.ToLower(strings.TrimSpace(cli.LogFormat))
	if !logx.ValidFormat(logFormat) {
		return Effective{}, &Error{Code: ErrCodeInvalid, Flag: "--log-format", Err: fmt.Errorf("只能是 text 或 json，实际是 %q", cli.LogFormat)}
	}
	if logFormat == "" {
		logFormat = logx.FormatText
	}
	logLevel := "info"
	if cli.Verbose {
		logLevel = "debug"
	}

	return Effective{
		NIF:       id,
		BaseURL:   baseURL,
		ProxyURL:  proxyURL,
		Timeout:   timeout,
		UserAgent: strings.TrimSpace(cli.UserAgent),
		Offline:   cli.Offline,
		JSON:      cli.JSON,
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}, nil
}

func validateHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("不是绝对 URL：%q", s)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("必须是 http/https：%q", s)
	}
	return nil
}
