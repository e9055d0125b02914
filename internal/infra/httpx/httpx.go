package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Options 是查询客户端的网络策略（全部可选）。
type Options struct {
	// ProxyURL 非空时所有请求走代理，且禁用 keep-alive。
	ProxyURL string
	// Timeout 为 0 时不设置总超时，沿用 transport 自身的拨号/握手超时。
	Timeout time.Duration
	// UserAgent 为空时使用 Go 默认 UA（不额外加头）。
	UserAgent string
}

// Transport 把“可选 UA + keep-alive 策略”固化为统一策略。
//
// 约束：每个请求只发一次，不做重试（失败由上层收敛为 unknown）。
type Transport struct {
	Base *http.Transport

	UserAgent string

	// DisableKeepAlives 决定是否对 Request 设置 Close=true（额外保险）。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone 会复制 Header 等，避免在 RoundTripper 内部“污染”调用方的 request。
	r := req.Clone(req.Context())
	if t.UserAgent != "" && r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", t.UserAgent)
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

// NewClient 构造用于 nif.pt 查询的 HTTP client。
//
// 规则：
// - 默认不走代理（忽略 HTTP_PROXY 等环境变量）
// - proxyURL 非空：必须走代理，且禁用 keep-alive（每请求新连接）
// - Timeout>0 时设置总超时
func NewClient(opts Options) (*http.Client, error) {
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("timeout 不能为负数：%s", opts.Timeout)
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.Proxy = nil

	disableKeepAlives := false
	if proxyURL := strings.TrimSpace(opts.ProxyURL); proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	tr := &Transport{
		Base:              base,
		UserAgent:         strings.TrimSpace(opts.UserAgent),
		DisableKeepAlives: disableKeepAlives,
	}
	return &http.Client{
		Transport: tr,
		Timeout:   opts.Timeout,
	}, nil
}
