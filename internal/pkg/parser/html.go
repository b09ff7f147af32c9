/*
 * @Description: HTML 清洗
 * @Author: inkwell
 * @Date: 2026-03-12 19:22:15
 * @LastEditTime: 2026-03-12 19:22:15
 * @LastEditors: inkwell
 */
package parser

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// StripHTML 移除所有标签，并还原被转义的实体，结果用于纯文本字段（如标题）
func StripHTML(htmlContent string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(htmlContent)))
}

// Excerpt 把 Markdown 渲染后的纯文本截取为摘要，超长时追加省略号
func Excerpt(mdContent string, maxRunes int) string {
	rendered, err := ArticleToHTML(mdContent)
	if err != nil {
		rendered = mdContent
	}
	text := strings.Join(strings.Fields(StripHTML(rendered)), " ")
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}
