package domain

import (
	"encoding/json"
	"time"
)

// Report 是一次 CLI 调用的对外输出（--json 时写到 stdout，不落盘）。
type Report struct {
	NIF        string    `json:"nif"`
	LocalValid bool      `json:"local_valid"`
	CheckedAt  time.Time `json:"checked_at"`

	// Remote 为 nil 表示未做远程查询（--offline）。
	Remote *RemoteResult `json:"remote,omitempty"`
}

// RemoteResult 是远程查询的结果与诊断信息。
// Rule/Error 只用于排查，不参与 Status 的语义。
type RemoteResult struct {
	URL    string       `json:"url"`
	Status RemoteStatus `json:"status"`
	Rule   string       `json:"rule"`
	Error  string       `json:"error"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) Remote.Status 为空时收敛为 unknown
func (r *Report) Finalize() {
	r.CheckedAt = r.CheckedAt.UTC()
	if r.Remote != nil && r.Remote.Status == "" {
		r.Remote.Status = StatusUnknown
	}
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(Alias(r))
}
