package domain

import "fmt"

// RemoteStatus 是远程查询的分类结果（封闭枚举，只允许下面五个值）。
//
// 约束：任何失败（网络/状态码/读 body/无法识别页面）都收敛为 StatusUnknown，
// 调用方不区分“网络断了”和“站点改版了”。
type RemoteStatus string

const (
	StatusValidKnown      RemoteStatus = "valid_known"
	StatusValidUnknown    RemoteStatus = "valid_unknown"
	StatusError           RemoteStatus = "error"
	StatusMultipleResults RemoteStatus = "multiple_results"
	StatusUnknown         RemoteStatus = "unknown"
)

// RemoteStatuses 按稳定顺序列出全部取值（用于测试与帮助文本）。
func RemoteStatuses() []RemoteStatus {
	return []RemoteStatus{
		StatusValidKnown,
		StatusValidUnknown,
		StatusError,
		StatusMultipleResults,
		StatusUnknown,
	}
}

// Valid 判断 s 是否属于封闭枚举。
func (s RemoteStatus) Valid() bool {
	switch s {
	case StatusValidKnown, StatusValidUnknown, StatusError, StatusMultipleResults, StatusUnknown:
		return true
	default:
		return false
	}
}

func (s RemoteStatus) String() string { return string(s) }

// Describe 返回给人看的一行说明（CLI 输出用）。
func (s RemoteStatus) Describe() string {
	switch s {
	case StatusValidKnown:
		return "Valid and known entity."
	case StatusValidUnknown:
		return "Valid but unknown entity."
	case StatusError:
		return "Invalid (Error message)."
	case StatusMultipleResults:
		return "Multiple companies found, NIF unavailable."
	case StatusUnknown:
		return "Unknown or could not determine."
	default:
		return fmt.Sprintf("Unrecognized status %q.", string(s))
	}
}

// UnmarshalText 拒绝枚举之外的取值，保证从 JSON 读回的 Report 仍然封闭。
func (s *RemoteStatus) UnmarshalText(b []byte) error {
	v := RemoteStatus(b)
	if !v.Valid() {
		return fmt.Errorf("未知 remote status：%q", string(b))
	}
	*s = v
	return nil
}

func (s RemoteStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("未知 remote status：%q", string(s))
	}
	return []byte(s), nil
}
