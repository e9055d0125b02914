package lookup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/John-Robertt/nifcheck/internal/domain"
	"github.com/John-Robertt/nifcheck/internal/infra/logx"
)

// DefaultBaseURL 是 nif.pt 的查询入口；NIF 以 ?q=<NIF> 传入。
const DefaultBaseURL = "https://www.nif.pt/"

// Checker 对一个 NIF 发起一次查询并把页面分类为 RemoteStatus。
//
// 约束：
// - 每次调用最多一次 GET；不做缓存、不做重试、不做限速
// - 所有失败都收敛为 unknown，错误只写日志并放在 Result.Err
// - 无可变状态，可并发调用
type Checker struct {
	// BaseURL 为空时使用 DefaultBaseURL（测试或镜像站点可覆盖）。
	BaseURL string
	// Client 为空时使用 http.DefaultClient。
	Client *http.Client
	// Logger 为空时不输出诊断。
	Logger *slog.Logger
}

// Result 是一次查询的完整结果。
type Result struct {
	URL    string
	Status domain.RemoteStatus
	Rule   string // 命中的规则名；未命中为空
	Err    error  // 仅用于诊断
}

// QueryURL 把 id 作为 q 参数拼到查询入口上。
func (c Checker) QueryURL(id string) (string, error) {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("base url 无效：%w", err)
	}
	q := u.Query()
	q.Set("q", id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Status 只返回分类结果。
func (c Checker) Status(ctx context.Context, id string) domain.RemoteStatus {
	return c.Check(ctx, id).Status
}

// Check 查询 id 并返回分类结果与诊断信息。
func (c Checker) Check(ctx context.Context, id string) Result {
	log := c.logger().With("nif", id)

	u, err := c.QueryURL(id)
	if err != nil {
		log.Warn("构造查询 URL 失败", "err", err)
		return Result{Status: domain.StatusUnknown, Err: &FetchError{Stage: StageRequest, URL: c.BaseURL, Err: err}}
	}
	res := Result{URL: u, Status: domain.StatusUnknown}

	log.Debug("查询", "url", u)
	body, contentType, err := fetch(ctx, c.client(), u)
	if err != nil {
		log.Warn("查询失败", "url", u, "err", err)
		res.Err = err
		return res
	}

	q, err := ParseHTML(body, contentType)
	if err != nil {
		res.Err = &FetchError{Stage: StageParse, URL: u, Err: err}
		log.Warn("解析 HTML 失败", "url", u, "err", err)
		return res
	}

	v := Classify(q)
	if v.Rule != RuleErrorBlock && hasPlainSuccessBlock(q) {
		log.Debug("存在成功提示块但不含未知实体提示，继续后续判定")
	}
	res.Status, res.Rule = v.Status, v.Rule
	if v.Rule == "" {
		log.Debug("未命中任何标记", "status", v.Status)
	} else {
		log.Debug("命中标记", "rule", v.Rule, "status", v.Status)
	}
	return res
}

func (c Checker) client() *http.Client {
	if c.Client == nil {
		return http.DefaultClient
	}
	return c.Client
}

func (c Checker) logger() *slog.Logger {
	if c.Logger == nil {
		return logx.Discard()
	}
	return c.Logger
}

// fetch 发起 GET，返回 body 与 Content-Type。
// 非 2xx 返回 *HTTPStatusError；其它失败返回 *FetchError。
func fetch(ctx context.Context, c *http.Client, u string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", &FetchError{Stage: StageRequest, URL: u, Err: err}
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, "", &FetchError{Stage: StageTransport, URL: u, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &HTTPStatusError{URL: u, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &FetchError{Stage: StageBody, URL: u, Err: err}
	}
	return b, resp.Header.Get("Content-Type"), nil
}
