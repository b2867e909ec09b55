package markdown

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// renderer 未开启 WithUnsafe，正文中的原始 HTML 会被转义
var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// ToHTML 将资源正文 Markdown 渲染为 HTML
// 渲染失败时退化为转义后的原文，保证详情接口始终有可展示内容
func ToHTML(md string) string {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return html.EscapeString(md)
	}
	return buf.String()
}
