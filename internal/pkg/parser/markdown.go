// internal/pkg/parser/markdown.go
package parser

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	articleMD goldmark.Markdown
	commentMD goldmark.Markdown

	articlePolicy *bluemonday.Policy
	commentPolicy *bluemonday.Policy
)

func init() {
	// 文章支持完整的 GFM，原始 HTML 放行后统一由 bluemonday 清理
	articleMD = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	// 评论只保留行内格式和链接，原始 HTML 直接丢弃
	commentMD = goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Strikethrough,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	articlePolicy = bluemonday.UGCPolicy()
	articlePolicy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span")
	articlePolicy.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	articlePolicy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	commentPolicy = bluemonday.NewPolicy()
	commentPolicy.AllowElements("p", "br", "strong", "em", "del", "code", "pre", "blockquote", "ul", "ol", "li")
	commentPolicy.AllowStandardURLs()
	commentPolicy.AllowAttrs("href").OnElements("a")
	commentPolicy.RequireNoFollowOnLinks(true)
	commentPolicy.AddTargetBlankToFullyQualifiedLinks(true)
}

func render(md goldmark.Markdown, policy *bluemonday.Policy, content string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(policy.Sanitize(buf.String())), nil
}

// ArticleToHTML 将文章正文 Markdown 转换为安全的 HTML
func ArticleToHTML(mdContent string) (string, error) {
	return render(articleMD, articlePolicy, mdContent)
}

// CommentToHTML 将评论 Markdown 转换为安全的 HTML，只允许少量行内元素
func CommentToHTML(mdContent string) (string, error) {
	return render(commentMD, commentPolicy, mdContent)
}
