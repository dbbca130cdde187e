package composer

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML inside markdown is not rendered.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// richText prefers the stored HTML and falls back to rendering the
// markdown source. It returns "" when neither is set.
func richText(htmlSrc, markdownSrc *string) string {
	if htmlSrc != nil && *htmlSrc != "" {
		return *htmlSrc
	}
	if markdownSrc == nil || *markdownSrc == "" {
		return ""
	}
	out, err := RenderMarkdown(*markdownSrc)
	if err != nil {
		return ""
	}
	return out
}
