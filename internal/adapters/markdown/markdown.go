// Package markdown renders trusted-but-unsanitised markdown (service descriptions,
// email bodies) to HTML.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// renderer escapes raw HTML in the input (WithUnsafe is NOT set).
var renderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// ToHTML converts markdown source to an HTML fragment.
func ToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Safe converts markdown for direct use in html/template.
// On conversion failure the escaped source is returned.
func Safe(src string) template.HTML {
	out, err := ToHTML(src)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(out)
}
