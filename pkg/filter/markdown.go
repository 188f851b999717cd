package filter

import (
	"bytes"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// mdParser renders Markdown page sources. Raw HTML in the source is passed
// through so pages can mix both.
var mdParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// markdownFilter renders a Markdown page source to HTML.
func markdownFilter(input string, _ *Context) (string, error) {
	if input == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(input), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// toMarkdownFilter converts the HTML produced by earlier filters to Markdown.
// Protected code blocks are put back first so they convert to fenced code.
func toMarkdownFilter(input string, c *Context) (string, error) {
	input = c.restore(input)
	if strings.TrimSpace(input) == "" {
		return "", nil
	}
	out, err := htmltomarkdown.ConvertString(input)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out) + "\n", nil
}
