package scraper

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

// 只去标签保留文本，script/style 的内容整体丢弃
var textPolicy = bluemonday.StrictPolicy()

// selector 支持 "tag"、".class" 与 "tag.class" 三种写法
type selector struct {
	tag   string
	class string
}

func parseSelector(raw string) selector {
	raw = strings.TrimSpace(raw)
	tag, class, found := strings.Cut(raw, ".")
	if !found {
		return selector{tag: raw}
	}
	return selector{tag: tag, class: class}
}

func (s selector) matches(n *xhtml.Node) bool {
	if n.Type != xhtml.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.class != "" && !hasClass(n, s.class) {
		return false
	}
	return s.tag != "" || s.class != ""
}

func attr(n *xhtml.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *xhtml.Node, class string) bool {
	value, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, field := range strings.Fields(value) {
		if field == class {
			return true
		}
	}
	return false
}

// selectAll 按文档顺序返回 root 之下所有匹配节点，不包含 root 本身
func selectAll(root *xhtml.Node, sel selector) []*xhtml.Node {
	var out []*xhtml.Node
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if sel.matches(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

func selectFirst(root *xhtml.Node, sel selector) *xhtml.Node {
	var found *xhtml.Node
	var walk func(*xhtml.Node) bool
	walk = func(n *xhtml.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if sel.matches(c) {
				found = c
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}

// findElements 返回 class 属性满足 pred 的 tag 元素
func findElements(root *xhtml.Node, tag string, pred func(class string) bool) []*xhtml.Node {
	var out []*xhtml.Node
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xhtml.ElementNode && c.Data == tag {
				if class, ok := attr(c, "class"); ok && pred(class) {
					out = append(out, c)
				}
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// inlineText 返回节点的纯文本，空白折叠为单个空格
func inlineText(n *xhtml.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := xhtml.Render(&buf, c); err != nil {
			return ""
		}
	}
	text := html.UnescapeString(textPolicy.Sanitize(buf.String()))
	return strings.Join(strings.Fields(text), " ")
}

var blockElements = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
}

// blockText 保留块级元素之间的换行，供按行解析使用
func blockText(n *xhtml.Node) string {
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(node *xhtml.Node) {
		switch node.Type {
		case xhtml.TextNode:
			b.WriteString(node.Data)
		case xhtml.ElementNode:
			if node.Data == "script" || node.Data == "style" {
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if node.Type == xhtml.ElementNode && blockElements[node.Data] {
			b.WriteString("\n")
		}
	}
	walk(n)
	return b.String()
}

func lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
