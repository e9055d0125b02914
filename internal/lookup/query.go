package lookup

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Selector 是预编译的 CSS 选择器（包初始化时编译一次）。
type Selector struct {
	raw string
	m   cascadia.Selector
}

// MustSelector 编译 raw；语法错误直接 panic（只用于包级常量）。
func MustSelector(raw string) Selector {
	return Selector{raw: raw, m: cascadia.MustCompile(raw)}
}

func (s Selector) String() string { return s.raw }

// Query 是分类器对 HTML 文档仅需的只读能力。
//
// 约束：
// - 只做“存在性/首个元素文本”查询，不暴露 DOM 结构
// - 找不到时返回零值，不报错（畸形 HTML 只会让选择器什么也匹配不到）
type Query interface {
	// Exists 报告文档中是否存在匹配 sel 的元素。
	Exists(sel Selector) bool
	// FirstText 返回第一个匹配 sel 的元素的全部文本。
	FirstText(sel Selector) (string, bool)
	// FirstContains 报告第一个匹配 container 的元素内部是否存在匹配 sel 的元素。
	FirstContains(container, sel Selector) bool
}

type goqueryDoc struct {
	doc *goquery.Document
}

// NewQuery 用 goquery 文档实现 Query。
func NewQuery(doc *goquery.Document) Query {
	return goqueryDoc{doc: doc}
}

func (d goqueryDoc) Exists(sel Selector) bool {
	return d.doc.FindMatcher(sel.m).Length() > 0
}

func (d goqueryDoc) FirstText(sel Selector) (string, bool) {
	s := d.doc.FindMatcher(sel.m).First()
	if s.Length() == 0 {
		return "", false
	}
	return s.Text(), true
}

func (d goqueryDoc) FirstContains(container, sel Selector) bool {
	c := d.doc.FindMatcher(container.m).First()
	if c.Length() == 0 {
		return false
	}
	return c.FindMatcher(sel.m).Length() > 0
}

// ParseHTML 按 Content-Type（以及 <meta charset>）解码 body 后解析为 Query。
// contentType 可以为空，此时按内容嗅探，默认 UTF-8。
func ParseHTML(body []byte, contentType string) (Query, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		r = bytes.NewReader(body)
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return NewQuery(goquery.NewDocumentFromNode(root)), nil
}
