// Package richtext converts author-supplied invitation text into safe HTML and plain text.
package richtext

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ginvite/ginvite-api/internal/platform/textutil"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(goldhtml.WithHardWraps(), goldhtml.WithUnsafe()),
	)
	contentPolicy = newContentPolicy()
	stripPolicy   = bluemonday.StrictPolicy()
)

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// RenderHTML renders markdown (which may embed HTML from the rich-text editor) into
// sanitised HTML safe to place in a template.
func RenderHTML(source string) template.HTML {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(contentPolicy.SanitizeBytes(buf.Bytes()))
}

// PlainText strips every tag from source, decodes entities and collapses whitespace.
func PlainText(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	// Block-level boundaries must not glue adjacent words together.
	spaced := strings.NewReplacer("<", " <", ">", "> ").Replace(source)
	stripped := stripPolicy.Sanitize(spaced)
	return textutil.CollapseWhitespace(html.UnescapeString(stripped))
}
