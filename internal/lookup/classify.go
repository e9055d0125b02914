package lookup

import (
	"strings"

	"github.com/John-Robertt/nifcheck/internal/domain"
)

// UnknownEntityNotice 是站点在“NIF 合法但无法确定实体”时展示的原文。
const UnknownEntityNotice = "O NIF indicado é válido mas não conseguimos determinar a entidade associada."

// nif.pt 页面上的标记。站点改版时只需要改这里。
var (
	selErrorBlock    = MustSelector(".alert-message.error.block-message")
	selSuccessBlock  = MustSelector(".alert-message.success.block-message")
	selSearchResults = MustSelector("#search-results")
	selSearchTitle   = MustSelector(".search-title")
	selBigNIF        = MustSelector(".big-nif")
)

const (
	RuleErrorBlock      = "error_block"
	RuleUnknownEntity   = "unknown_entity_notice"
	RuleMultipleResults = "multiple_results"
	RuleKnownEntity     = "known_entity"
)

// Rule 是一条 (判定, 结果) 规则。
type Rule struct {
	Name   string
	Match  func(Query) bool
	Status domain.RemoteStatus
}

// rules 的顺序就是优先级：先匹配者胜出。
// 同一页面可能同时出现成功提示与实体信息，顺序决定采用哪种解释。
var rules = []Rule{
	{Name: RuleErrorBlock, Match: hasErrorBlock, Status: domain.StatusError},
	{Name: RuleUnknownEntity, Match: hasUnknownEntityNotice, Status: domain.StatusValidUnknown},
	{Name: RuleMultipleResults, Match: hasMultipleResults, Status: domain.StatusMultipleResults},
	{Name: RuleKnownEntity, Match: hasKnownEntity, Status: domain.StatusValidKnown},
}

// Rules 返回规则表的副本（按优先级排序）。
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Verdict 是一次分类的结果；Rule 为空表示没有任何规则命中。
type Verdict struct {
	Status domain.RemoteStatus
	Rule   string
}

// Classify 按优先级依次评估规则，返回第一条命中的结果；全部未命中时为 unknown。
// 纯函数：相同文档 => 相同结果。
func Classify(q Query) Verdict {
	if q == nil {
		return Verdict{Status: domain.StatusUnknown}
	}
	for _, r := range rules {
		if r.Match(q) {
			return Verdict{Status: r.Status, Rule: r.Name}
		}
	}
	return Verdict{Status: domain.StatusUnknown}
}

func hasErrorBlock(q Query) bool {
	return q.Exists(selErrorBlock)
}

// 只看第一个成功提示块；没有该句时不下结论，交给后续规则。
func hasUnknownEntityNotice(q Query) bool {
	text, ok := q.FirstText(selSuccessBlock)
	return ok && strings.Contains(text, UnknownEntityNotice)
}

func hasMultipleResults(q Query) bool {
	return q.FirstContains(selSearchResults, selSearchTitle)
}

func hasKnownEntity(q Query) bool {
	return q.Exists(selBigNIF) && q.Exists(selSearchTitle)
}

// hasPlainSuccessBlock 表示有成功提示块但不是“未知实体”那一句（只用于诊断日志）。
func hasPlainSuccessBlock(q Query) bool {
	return q.Exists(selSuccessBlock) && !hasUnknownEntityNotice(q)
}
