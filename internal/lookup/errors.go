package lookup

import (
	"fmt"
	"strings"
)

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
// 对调用方而言结果仍是 unknown；该错误只用于诊断输出。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

const (
	StageRequest   = "request"   // 构造请求失败
	StageTransport = "transport" // 连接/DNS/超时
	StageBody      = "body"      // 读取 body 失败
	StageParse     = "parse"     // HTML 解码失败
)

// FetchError 记录一次查询在哪个阶段失败。
type FetchError struct {
	Stage string
	URL   string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("stage=%s url=%s: %v", e.Stage, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
